package registrations

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/aura-webinar/keygate/config"
	"github.com/aura-webinar/keygate/internal/models"
	"github.com/aura-webinar/keygate/internal/store"
	"github.com/aura-webinar/keygate/internal/zoom"
)

const (
	testMeetingID = "85746065432"
	testKey       = "abcd123456"
	testRow       = 7
)

func testMeetings() config.Meetings {
	return config.Meetings{testMeetingID: {TimeID: "1"}, "81234567890": {TimeID: "2"}}
}

func testRegistrant(t *testing.T, answers ...string) *models.Registrant {
	t.Helper()
	questions := make([]map[string]string, 0, len(answers))
	for _, a := range answers {
		questions = append(questions, map[string]string{"title": "Access key", "value": a})
	}
	raw, err := json.Marshal(map[string]any{
		"id":               "reg-1",
		"email":            "ada@example.com",
		"first_name":       "Ada",
		"last_name":        "Lovelace",
		"custom_questions": questions,
	})
	require.NoError(t, err)
	var r models.Registrant
	require.NoError(t, json.Unmarshal(raw, &r))
	return &r
}

func newTestApprover(t *testing.T) (*Approver, *MockStore, *MockRegistrantApprover) {
	ctrl := gomock.NewController(t)
	st := NewMockStore(ctrl)
	client := NewMockRegistrantApprover(ctrl)
	return NewApprover(st, client, testMeetings(), zap.NewNop()), st, client
}

func emptyRecord() *models.RegistrantRecord {
	return &models.RegistrantRecord{Row: testRow, Key: testKey, Name: "Ada", ExpectedTimeID: "1"}
}

func TestApprover_Process(t *testing.T) {
	ctx := context.Background()

	t.Run("approval succeeds and record becomes registered", func(t *testing.T) {
		approver, st, client := newTestApprover(t)
		registrant := testRegistrant(t, testKey)
		snapshot, err := registrant.Snapshot()
		require.NoError(t, err)

		gomock.InOrder(
			st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil),
			st.EXPECT().Read(gomock.Any(), testRow).Return(emptyRecord(), nil),
			client.EXPECT().ApproveRegistrant(gomock.Any(), testMeetingID, "reg-1", "ada@example.com").
				Return(zoom.ApprovalResult{Approved: true, StatusCode: 204}),
			st.EXPECT().Write(gomock.Any(), testRow, models.ApprovalUpdate(models.StatusRegistered, "reg-1", snapshot)).
				Return(nil),
		)

		out := approver.Process(ctx, testMeetingID, registrant, testKey)

		assert.Equal(t, KindRegistered, out.Kind)
		assert.Equal(t, testRow, out.Row)
		assert.True(t, out.Mutated())
	})

	t.Run("approval rejected and record becomes pending", func(t *testing.T) {
		approver, st, client := newTestApprover(t)
		registrant := testRegistrant(t, testKey)
		snapshot, err := registrant.Snapshot()
		require.NoError(t, err)

		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(emptyRecord(), nil)
		client.EXPECT().ApproveRegistrant(gomock.Any(), testMeetingID, "reg-1", "ada@example.com").
			Return(zoom.ApprovalResult{StatusCode: 400, Body: `{"code":300}`})
		st.EXPECT().Write(gomock.Any(), testRow, models.ApprovalUpdate(models.StatusPending, "reg-1", snapshot)).
			Return(nil)

		out := approver.Process(ctx, testMeetingID, registrant, testKey)

		assert.Equal(t, KindApprovalAPIFailure, out.Kind)
	})

	t.Run("key not in store", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(0, store.ErrNotFound)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindKeyNotFound, out.Kind)
		assert.False(t, out.Mutated())
	})

	t.Run("already registered replay makes no writes and no calls", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		rec := emptyRecord()
		rec.Status = models.StatusRegistered
		rec.Data = `{"id":"reg-1"}`
		rec.ExternalID = "reg-1"
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil).Times(2)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil).Times(2)

		for i := 0; i < 2; i++ {
			out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)
			assert.Equal(t, KindAlreadyRegistered, out.Kind)
		}
	})

	t.Run("pending status is not retried", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		rec := emptyRecord()
		rec.Status = models.StatusPending
		rec.Data = `{"id":"reg-1"}`
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindAlreadyPending, out.Kind)
	})

	t.Run("pending status with empty data is not approved again", func(t *testing.T) {
		approver, st, client := newTestApprover(t)
		rec := emptyRecord()
		rec.Status = models.StatusPending
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil)
		client.EXPECT().ApproveRegistrant(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		st.EXPECT().Write(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindAlreadyPending, out.Kind)
		assert.False(t, out.Mutated())
	})

	t.Run("pending marker in data holds the key back", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		rec := emptyRecord()
		rec.Data = models.PendingDataMarker
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindAlreadyPending, out.Kind)
	})

	t.Run("data without status is left alone", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		rec := emptyRecord()
		rec.Data = `{"id":"someone-else"}`
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindRecordInUse, out.Kind)
	})

	t.Run("wrong time slot is never approved", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		rec := emptyRecord()
		rec.ExpectedTimeID = "2"
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindMeetingMismatch, out.Kind)
	})

	t.Run("numeric time slots compare by value", func(t *testing.T) {
		approver, st, client := newTestApprover(t)
		rec := emptyRecord()
		rec.ExpectedTimeID = " 01 "
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(rec, nil)
		client.EXPECT().ApproveRegistrant(gomock.Any(), testMeetingID, "reg-1", "ada@example.com").
			Return(zoom.ApprovalResult{Approved: true, StatusCode: 204})
		st.EXPECT().Write(gomock.Any(), testRow, gomock.Any()).Return(nil)

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindRegistered, out.Kind)
	})

	t.Run("unconfigured meeting touches nothing", func(t *testing.T) {
		approver, _, _ := newTestApprover(t)

		out := approver.Process(ctx, "999", testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindUnknownMeeting, out.Kind)
	})

	t.Run("lookup failure", func(t *testing.T) {
		approver, st, _ := newTestApprover(t)
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(0, errors.New("quota exceeded"))

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindStoreFailure, out.Kind)
		assert.Error(t, out.Err)
	})

	t.Run("write failure after approval", func(t *testing.T) {
		approver, st, client := newTestApprover(t)
		st.EXPECT().FindByKey(gomock.Any(), testKey).Return(testRow, nil)
		st.EXPECT().Read(gomock.Any(), testRow).Return(emptyRecord(), nil)
		client.EXPECT().ApproveRegistrant(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(zoom.ApprovalResult{Approved: true, StatusCode: 204})
		st.EXPECT().Write(gomock.Any(), testRow, gomock.Any()).Return(errors.New("sheet is protected"))

		out := approver.Process(ctx, testMeetingID, testRegistrant(t, testKey), testKey)

		assert.Equal(t, KindStoreFailure, out.Kind)
	})
}

func TestRegistrantSnapshot_KeepsOriginalFields(t *testing.T) {
	var r models.Registrant
	raw := `{"id":"reg-1","email":"ada@example.com","first_name":"Ada","last_name":"","city":"Zürich","custom_questions":[]}`
	require.NoError(t, json.Unmarshal([]byte(raw), &r))

	snapshot, err := r.Snapshot()

	require.NoError(t, err)
	assert.JSONEq(t, raw, snapshot)
	assert.Contains(t, snapshot, "Zürich")
}
