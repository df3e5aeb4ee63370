package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meeting is the static information kept for one meeting.
type Meeting struct {
	TimeID string `yaml:"time_id"`
}

// Meetings maps meeting id to its expected time slot.
type Meetings map[string]Meeting

// TimeID returns the configured time slot of a meeting.
func (m Meetings) TimeID(meetingID string) (string, bool) {
	mt, ok := m[strings.TrimSpace(meetingID)]
	if !ok {
		return "", false
	}
	return mt.TimeID, true
}

// IDs returns the configured meeting ids.
func (m Meetings) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	return ids
}

// SameTimeSlot compares two time slot ids, numerically when both are integers.
func SameTimeSlot(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	x, errA := strconv.ParseInt(a, 10, 64)
	y, errB := strconv.ParseInt(b, 10, 64)
	if errA == nil && errB == nil {
		return x == y
	}
	return a != "" && a == b
}

// ColumnsConfig names the header labels of the record columns.
type ColumnsConfig struct {
	Key        string `yaml:"key"`
	Name       string `yaml:"name"`
	Status     string `yaml:"status"`
	Data       string `yaml:"data"`
	ExternalID string `yaml:"external_id"`
	TimeID     string `yaml:"time_id"`
}

type meetingsFile struct {
	Meetings Meetings      `yaml:"meetings"`
	Columns  ColumnsConfig `yaml:"columns"`
}

// DefaultColumns are used for any header label the meetings file leaves out.
var DefaultColumns = ColumnsConfig{
	Key:        "Key",
	Status:     "Status",
	Data:       "Data",
	ExternalID: "Registrant ID",
	TimeID:     "Time ID",
}

// LoadMeetingsFile reads the meeting -> time slot map and the column labels.
func LoadMeetingsFile(path string) (Meetings, ColumnsConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, ColumnsConfig{}, fmt.Errorf("read meetings file: %w", err)
	}
	return ParseMeetings(raw)
}

// ParseMeetings decodes a meetings document.
func ParseMeetings(raw []byte) (Meetings, ColumnsConfig, error) {
	var f meetingsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, ColumnsConfig{}, fmt.Errorf("parse meetings file: %w", err)
	}
	meetings := make(Meetings, len(f.Meetings))
	for id, m := range f.Meetings {
		id = strings.TrimSpace(id)
		if id == "" || strings.TrimSpace(m.TimeID) == "" {
			return nil, ColumnsConfig{}, fmt.Errorf("%w: meeting %q has no time_id", ErrInvalidConfig, id)
		}
		meetings[id] = Meeting{TimeID: strings.TrimSpace(m.TimeID)}
	}
	return meetings, f.Columns.withDefaults(), nil
}

func (c ColumnsConfig) withDefaults() ColumnsConfig {
	pick := func(v, d string) string {
		if strings.TrimSpace(v) == "" {
			return d
		}
		return v
	}
	return ColumnsConfig{
		Key:        pick(c.Key, DefaultColumns.Key),
		Name:       c.Name,
		Status:     pick(c.Status, DefaultColumns.Status),
		Data:       pick(c.Data, DefaultColumns.Data),
		ExternalID: pick(c.ExternalID, DefaultColumns.ExternalID),
		TimeID:     pick(c.TimeID, DefaultColumns.TimeID),
	}
}
