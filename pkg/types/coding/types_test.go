package coding

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodeRequest_Validate_Valid(t *testing.T) {
	req := CodeRequest{Text: "History of HTN and COPD."}
	assert.NoError(t, req.Validate())

	req = CodeRequest{Text: "x", FuzzyLimit: 5, FuzzyThreshold: 90}
	assert.NoError(t, req.Validate())
}

func TestCodeRequest_Validate_EmptyText(t *testing.T) {
	assert.Error(t, CodeRequest{}.Validate())
	assert.Error(t, CodeRequest{Text: "   \n\t"}.Validate())
}

func TestCodeRequest_Validate_NegativeFuzzyLimit(t *testing.T) {
	req := CodeRequest{Text: "x", FuzzyLimit: -1}
	assert.Error(t, req.Validate())
}

func TestCodeRequest_Validate_ThresholdBounds(t *testing.T) {
	assert.Error(t, CodeRequest{Text: "x", FuzzyThreshold: -0.1}.Validate())
	assert.Error(t, CodeRequest{Text: "x", FuzzyThreshold: 100.1}.Validate())
	assert.NoError(t, CodeRequest{Text: "x", FuzzyThreshold: 100}.Validate())
}

func TestRow_WireFieldNames(t *testing.T) {
	row := Row{
		Mention:  "HTN",
		Matched:  "hypertension",
		Score:    "100",
		CUI:      "C0020538",
		ICDCodes: "I10",
	}

	data, err := json.Marshal(row)
	require.NoError(t, err)

	payload := string(data)
	assert.Contains(t, payload, `"mention":"HTN"`)
	assert.Contains(t, payload, `"matched":"hypertension"`)
	assert.Contains(t, payload, `"score":"100"`)
	assert.Contains(t, payload, `"cui":"C0020538"`)
	assert.Contains(t, payload, `"icd_codes":"I10"`)
}

func TestRow_UnresolvedKeepsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Row{Mention: "rare syndrome"})
	require.NoError(t, err)

	payload := string(data)
	assert.Contains(t, payload, `"matched":""`)
	assert.Contains(t, payload, `"score":""`)
	assert.Contains(t, payload, `"cui":""`)
	assert.Contains(t, payload, `"icd_codes":""`)
}

func TestErrorEnvelope_WireShape(t *testing.T) {
	env := ErrorEnvelope{Error: ErrorDetail{Code: "INVALID_PARAM", Message: "text must not be empty"}}

	data, err := json.Marshal(env)
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"INVALID_PARAM","message":"text must not be empty"}}`, string(data))
}
