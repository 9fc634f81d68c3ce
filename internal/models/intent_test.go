package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool(t *testing.T) {
	cases := map[string]bool{
		`{"all_day": true}`:    true,
		`{"all_day": "true"}`:  true,
		`{"all_day": "False"}`: false,
		`{"all_day": 1}`:       true,
		`{"all_day": ""}`:      false,
		`{"all_day": null}`:    false,
	}
	for raw, want := range cases {
		var d EventDescriptor
		require.NoError(t, json.Unmarshal([]byte(raw), &d), raw)
		if d.AllDay == nil {
			assert.False(t, want, raw)
			continue
		}
		assert.Equal(t, want, bool(*d.AllDay), raw)
	}

	var d EventDescriptor
	assert.Error(t, json.Unmarshal([]byte(`{"all_day": "maybe"}`), &d))
}

func TestTitleValue(t *testing.T) {
	var nilDesc *EventDescriptor
	assert.Equal(t, "", nilDesc.TitleValue())
	title := "  Standup "
	assert.Equal(t, "Standup", (&EventDescriptor{Title: &title}).TitleValue())
}
