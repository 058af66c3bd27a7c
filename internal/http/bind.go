package http

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"
)

// bindStrict decodes a JSON body rejecting unknown fields, so a typo'd
// or malformed schedule field is a 400 instead of a silent no-op.
func bindStrict(c *gin.Context, v any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// optTime distinguishes an absent field from an explicit null: null
// clears the stored bound, absent leaves it alone.
type optTime struct {
	Set bool
	Val *time.Time
}

func (o *optTime) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Val = nil
		return nil
	}
	var t time.Time
	if err := json.Unmarshal(b, &t); err != nil {
		return err
	}
	o.Val = &t
	return nil
}
