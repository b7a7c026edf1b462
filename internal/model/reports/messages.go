package reports

import (
	"encoding/json"

	"github.com/pkg/errors"
)

// Request asks the reporter service to generate a dashboard and deliver
// it to a chat. It travels over the report request topic as JSON.
type Request struct {
	OwnerID string `json:"owner_id"`
	Period  string `json:"period"`
	ChatID  int64  `json:"chat_id"`
}

func (r Request) Marshal() ([]byte, error) {
	data, err := json.Marshal(r)
	return data, errors.Wrap(err, "marshal report request")
}

func UnmarshalRequest(data []byte) (Request, error) {
	var r Request
	err := json.Unmarshal(data, &r)
	return r, errors.Wrap(err, "unmarshal report request")
}
