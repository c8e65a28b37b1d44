package optional

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name      Field[string] `json:"name"`
	Count     Field[int]    `json:"count"`
	ZionID    ZionID        `json:"zionId"`
	Members   ZionIDs       `json:"members"`
	Zone      Ref           `json:"zone"`
	StartDate Date          `json:"startDate"`
}

func decode(t *testing.T, body string) payload {
	t.Helper()
	var p payload
	require.NoError(t, json.Unmarshal([]byte(body), &p))
	return p
}

func TestField_AbsentNullValue(t *testing.T) {
	p := decode(t, `{"name": null, "count": 3}`)

	assert.True(t, p.Name.Set)
	assert.True(t, p.Name.Null)
	assert.False(t, p.Name.HasValue())
	assert.Nil(t, p.Name.Ptr())

	assert.True(t, p.Count.HasValue())
	assert.Equal(t, 3, *p.Count.Ptr())

	assert.False(t, p.ZionID.Set)
	assert.False(t, p.Zone.Set)
}

func TestZionID_Decoding(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		set     bool
		null    bool
		value   int64
		wantErr bool
	}{
		{name: "number", body: `{"zionId": 1005}`, set: true, value: 1005},
		{name: "numeric string", body: `{"zionId": " 1005 "}`, set: true, value: 1005},
		{name: "empty string is absent", body: `{"zionId": ""}`},
		{name: "zero string is absent", body: `{"zionId": "0"}`},
		{name: "zero number is absent", body: `{"zionId": 0}`},
		{name: "null clears", body: `{"zionId": null}`, set: true, null: true},
		{name: "garbage", body: `{"zionId": "abc"}`, wantErr: true},
		{name: "negative", body: `{"zionId": -4}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p payload
			err := json.Unmarshal([]byte(tt.body), &p)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.set, p.ZionID.Set)
			assert.Equal(t, tt.null, p.ZionID.Null)
			assert.Equal(t, tt.value, p.ZionID.Value)
		})
	}
}

func TestZionIDs_DropsSentinelsAndDuplicates(t *testing.T) {
	p := decode(t, `{"members": ["1001", 1002, "", "0", 1001]}`)
	assert.True(t, p.Members.HasValue())
	assert.Equal(t, []int64{1001, 1002}, p.Members.Value)

	p = decode(t, `{"members": []}`)
	assert.True(t, p.Members.HasValue())
	assert.Empty(t, p.Members.Value)

	p = decode(t, `{"members": null}`)
	assert.True(t, p.Members.Null)
}

func TestRef_IDOrName(t *testing.T) {
	p := decode(t, `{"zone": 3}`)
	id, ok := p.Zone.ID()
	assert.True(t, ok)
	assert.Equal(t, uint(3), id)

	p = decode(t, `{"zone": "Kochi"}`)
	assert.True(t, p.Zone.HasValue())
	_, ok = p.Zone.ID()
	assert.False(t, ok)
	assert.Equal(t, "Kochi", p.Zone.Value)

	p = decode(t, `{"zone": "0"}`)
	assert.False(t, p.Zone.Set)

	var bad payload
	assert.Error(t, json.Unmarshal([]byte(`{"zone": true}`), &bad))
}

func TestDate_Layouts(t *testing.T) {
	p := decode(t, `{"startDate": "2024-03-01"}`)
	require.True(t, p.StartDate.HasValue())
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), p.StartDate.Value)

	p = decode(t, `{"startDate": "2024-03-01T10:30:00+05:30"}`)
	require.True(t, p.StartDate.HasValue())
	assert.Equal(t, time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC), p.StartDate.Value)

	p = decode(t, `{"startDate": ""}`)
	assert.False(t, p.StartDate.Set)

	var bad payload
	assert.Error(t, json.Unmarshal([]byte(`{"startDate": "01/03/2024"}`), &bad))
}

func TestField_MarshalJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A Field[string] `json:"a"`
		B Field[string] `json:"b"`
	}{A: Of("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": "x", "b": null}`, string(out))
}
