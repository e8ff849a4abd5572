package extract

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObject_RecoversWrappedPayload(t *testing.T) {
	payload := map[string]any{
		"questions": []any{
			map[string]any{"id": "q1", "question": "Scale?", "options": []any{"Small", "Large"}},
		},
		"count":   7,
		"big":     int64(9007199254740993),
		"ratio":   0.25,
		"enabled": true,
		"missing": nil,
		"nested":  map[string]any{"text": "a } b { c"},
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	pretty, err := json.MarshalIndent(payload, "", "  ")
	require.NoError(t, err)

	cases := map[string]string{
		"bare":            string(raw),
		"json fence":      "```json\n" + string(pretty) + "\n```",
		"plain fence":     "```\n" + string(raw) + "\n```",
		"prose and fence": "Here is the result you asked for:\n\n```json\n" + string(pretty) + "\n```\n\nLet me know if you need more.",
		"prose only":      "Sure! " + string(raw) + " Hope this helps.",
		"inline fence":    "```json" + string(raw) + "```",
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := Object(text)
			require.NoError(t, err)

			back, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, string(raw), string(back))
		})
	}
}

func TestObject_KeepsIntegerPrecision(t *testing.T) {
	got, err := Object(`{"id": 9007199254740993}`)
	require.NoError(t, err)

	assert.Equal(t, json.Number("9007199254740993"), got["id"])
}

func TestObject_FenceInsideContentIsPreserved(t *testing.T) {
	text := "```json\n" + `{"files":[{"filename":"README.md","content":"Run:\n` + "```" + `bash\nmake\n` + "```" + `\n"}]}` + "\n```"

	var out struct {
		Files []struct {
			Filename string `json:"filename"`
			Content  string `json:"content"`
		} `json:"files"`
	}
	require.NoError(t, Decode(text, &out))

	require.Len(t, out.Files, 1)
	assert.Equal(t, "Run:\n```bash\nmake\n```\n", out.Files[0].Content)
}

func TestObject_UnfencedPayloadWithFenceInContent(t *testing.T) {
	text := `{"setup_instructions":"` + "```" + `sh\ngo run .\n` + "```" + `"}`

	got, err := Object(text)
	require.NoError(t, err)
	assert.Equal(t, "```sh\ngo run .\n```", got["setup_instructions"])
}

func TestObject_NoObject(t *testing.T) {
	for _, text := range []string{
		"",
		"I cannot help with that.",
		"```json\n[1, 2, 3]\n```",
		"} backwards {",
	} {
		_, err := Object(text)
		require.Error(t, err, text)
		assert.True(t, errors.Is(err, ErrMalformedResponse), text)
		assert.Contains(t, err.Error(), "no JSON object found")
	}
}

func TestObject_InvalidJSON(t *testing.T) {
	for _, text := range []string{
		`{"questions": [}`,
		`{'single': 'quotes'}`,
		"```json\n{\"a\": 1,}\n```",
		`{"a": 1} and then {"b": 2}`,
	} {
		_, err := Object(text)
		require.Error(t, err, text)
		assert.ErrorIs(t, err, ErrMalformedResponse, text)
	}
}

func TestDecode_TypedTarget(t *testing.T) {
	var plan struct {
		Overview string `json:"design_overview"`
		Tables   []struct {
			Name  string `json:"table_name"`
			Order int    `json:"sequence_order"`
		} `json:"tables"`
	}

	err := Decode("Plan:\n```json\n{\"design_overview\":\"shop\",\"tables\":[{\"table_name\":\"users\",\"sequence_order\":1}]}\n```", &plan)
	require.NoError(t, err)

	assert.Equal(t, "shop", plan.Overview)
	require.Len(t, plan.Tables, 1)
	assert.Equal(t, "users", plan.Tables[0].Name)
	assert.Equal(t, 1, plan.Tables[0].Order)
}

func TestDecode_InvalidJSONKeepsReason(t *testing.T) {
	var v map[string]any
	err := Decode(`{"a": tru}`, &v)

	require.ErrorIs(t, err, ErrMalformedResponse)
	assert.Contains(t, err.Error(), "invalid character")
}
