package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDate_JSONRoundTrip(t *testing.T) {
	d := NewDate(1994, time.September, 10)

	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1994-09-10"`, string(data))

	var parsed Date
	require.NoError(t, json.Unmarshal(data, &parsed))
	assert.True(t, parsed.Equal(d.Time))
}

func TestDate_UnmarshalInvalid(t *testing.T) {
	var d Date
	err := json.Unmarshal([]byte(`"10.09.1994"`), &d)
	assert.Error(t, err)
}

func TestDate_UnmarshalNull(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.True(t, d.IsZero())
}

func TestDate_ScanTime(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan(time.Date(2001, time.January, 2, 15, 30, 0, 0, time.UTC)))
	assert.Equal(t, "2001-01-02", d.String())
}

func TestUser_JSONBirthdayFormat(t *testing.T) {
	u := User{
		ID:       1,
		Email:    "ada@example.com",
		Login:    "ada",
		Name:     "Ada",
		Birthday: NewDate(1990, time.March, 1),
	}
	data, err := json.Marshal(u)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"birthday":"1990-03-01"`)
}
