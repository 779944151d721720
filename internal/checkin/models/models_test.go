package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSundayDate(t *testing.T) {
	tests := []struct {
		date string
		want string
	}{
		{"2025-06-01", "2025-06-01"}, // Sunday
		{"2025-06-02", "2025-06-08"}, // Monday
		{"2025-06-07", "2025-06-08"}, // Saturday
		{"2025-12-29", "2026-01-04"}, // across a year boundary
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			d, err := ParseDate(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.SundayDate().String())
		})
	}
}

func TestDateScan(t *testing.T) {
	var d Date

	require.NoError(t, d.Scan("2025-06-01"))
	assert.Equal(t, "2025-06-01", d.String())

	require.NoError(t, d.Scan([]byte("2025-06-02")))
	assert.Equal(t, "2025-06-02", d.String())

	require.NoError(t, d.Scan(time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-06-03", d.String())

	require.NoError(t, d.Scan("2025-06-04T00:00:00Z"))
	assert.Equal(t, "2025-06-04", d.String())

	assert.Error(t, d.Scan(42))
	assert.Error(t, d.Scan("June 5"))
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		Date Date `json:"date"`
	}
	b, err := json.Marshal(wrapper{Date: Date{2025, time.June, 1}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2025-06-01"}`, string(b))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2025-07-04"}`), &w))
	assert.Equal(t, Date{2025, time.July, 4}, w.Date)
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	late := time.Date(2025, 6, 1, 23, 30, 0, 0, loc)
	assert.Equal(t, "2025-06-01", DateOf(late).String())
	assert.Equal(t, "2025-06-02", DateOf(late.UTC()).String())
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Bill Smith", Person{FirstName: "William", NickName: "Bill", LastName: "Smith"}.DisplayName())
	assert.Equal(t, "Ann", Person{FirstName: "Ann"}.DisplayName())
}
