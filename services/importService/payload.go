package importService

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidPayload = errors.New("stats payload must be a JSON array of players")

// FlexInt accepts a JSON number, a numeric string or null. The stats site is
// not consistent about which one it sends.
type FlexInt struct {
	Value int64
	Valid bool
}

func Int(v int64) FlexInt {
	return FlexInt{Value: v, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if raw == "null" {
		*f = FlexInt{}
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
	}
	if raw == "" {
		*f = FlexInt{}
		return nil
	}

	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		*f = Int(n)
		return nil
	}
	fl, err := strconv.ParseFloat(raw, 64)
	if err != nil || fl != math.Trunc(fl) {
		return fmt.Errorf("%s is not an integer", raw)
	}
	*f = Int(int64(fl))
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(f.Value, 10)), nil
}

// IntOr returns the value, or def when it was missing.
func (f FlexInt) IntOr(def int) int {
	if !f.Valid {
		return def
	}
	return int(f.Value)
}

type StatsGame struct {
	Set        FlexInt `json:"set"`
	Round      FlexInt `json:"round"`
	OpponentID FlexInt `json:"opponent_id"`
	WinnerID   FlexInt `json:"winner_id"`
}

type StatsWeek struct {
	WeekNumber FlexInt     `json:"week_number"`
	Games      []StatsGame `json:"games"`
}

type StatsPlayer struct {
	ID            FlexInt     `json:"id"`
	Name          string      `json:"name"`
	TeamName      string      `json:"team_name"`
	FantasyPoints FlexInt     `json:"fantasy_points"`
	Weeks         []StatsWeek `json:"weeks"`
}

// FindWeek returns the player's raw week, or nil when they did not play it.
func (p StatsPlayer) FindWeek(week int) *StatsWeek {
	for i := range p.Weeks {
		if p.Weeks[i].WeekNumber.IntOr(0) == week {
			return &p.Weeks[i]
		}
	}
	return nil
}

// splitRecords checks the root is an array and hands back each element
// undecoded so one bad record does not sink the batch.
func splitRecords(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidPayload
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return records, nil
}

func decodeRecord(raw json.RawMessage) (StatsPlayer, error) {
	var p StatsPlayer
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, err
	}
	p.Name = strings.TrimSpace(p.Name)
	p.TeamName = strings.TrimSpace(p.TeamName)
	return p, nil
}
