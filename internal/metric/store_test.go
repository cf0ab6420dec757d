package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDefaults(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0.0, s.Get("live-calls"))
	_, ok := s.Lookup("live-calls")
	assert.False(t, ok)
	assert.Zero(t, s.Revision("live-calls"))
}

func TestStoreSetGet(t *testing.T) {
	s := NewStore()
	assert.True(t, s.Set("live-calls", 12))
	assert.Equal(t, 12.0, s.Get("live-calls"))

	v, ok := s.Lookup("live-calls")
	require.True(t, ok)
	assert.Equal(t, 12.0, v)

	assert.True(t, s.Set("live-calls", 7), "overwrite is unconditional")
	assert.Equal(t, 7.0, s.Get("live-calls"))
}

func TestStoreSetIdempotent(t *testing.T) {
	s := NewStore()
	var notified []string
	s.OnChange(func(id string) { notified = append(notified, id) })

	s.Set("queue-depth", 3)
	rev := s.Revision("queue-depth")
	assert.False(t, s.Set("queue-depth", 3))
	assert.False(t, s.Set("queue-depth", 3))

	assert.Equal(t, rev, s.Revision("queue-depth"))
	assert.Equal(t, []string{"queue-depth"}, notified)
}

func TestStoreFirstZeroValueNotifies(t *testing.T) {
	s := NewStore()
	var notified int
	s.OnChange(func(string) { notified++ })

	assert.True(t, s.Set("errors", 0), "first value is a change even when it equals the default")
	assert.Equal(t, 1, notified)
	_, ok := s.Lookup("errors")
	assert.True(t, ok)
}

func TestStoreNotificationScopedToMetric(t *testing.T) {
	s := NewStore()
	changed := map[string]int{}
	s.OnChange(func(id string) { changed[id]++ })

	s.Set("a", 1)
	s.Set("a", 2)
	s.Set("b", 1)

	assert.Equal(t, 2, changed["a"])
	assert.Equal(t, 1, changed["b"])
	assert.Equal(t, uint64(2), s.Revision("a"))
	assert.Equal(t, uint64(1), s.Revision("b"))
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantErr bool
	}{
		{in: "42", want: 42},
		{in: " 3.5\n", want: 3.5},
		{in: "-1e3", want: -1000},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "{\"value\":1}", wantErr: true},
		{in: "NaN", wantErr: true},
		{in: "+Inf", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue([]byte(tt.in))
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
