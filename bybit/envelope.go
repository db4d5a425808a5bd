package bybit

import (
	"encoding/json"
	"fmt"
)

const retCodeOK = 0

// Response is the envelope every v5 endpoint wraps its result in.
type Response struct {
	RetCode    int                        `json:"retCode"`
	RetMsg     string                     `json:"retMsg"`
	Result     json.RawMessage            `json:"result"`
	RetExtInfo map[string]json.RawMessage `json:"retExtInfo"`
	Time       int64                      `json:"time"`
}

func (r *Response) OK() bool {
	return r.RetCode == retCodeOK
}

func (r *Response) err() error {
	return fmt.Errorf("exchange returned code [%v]: [%v]", r.RetCode, r.RetMsg)
}

func (r *Response) decodeResult(result interface{}) error {
	if len(r.Result) == 0 {
		return fmt.Errorf("response has no result")
	}

	if err := json.Unmarshal(r.Result, result); err != nil {
		return fmt.Errorf("could not decode result: [%v]", err)
	}

	return nil
}

// extInfoList returns the per-item outcomes batch endpoints report in
// retExtInfo.list, in request order.
func (r *Response) extInfoList() ([]extInfoItem, error) {
	raw, ok := r.RetExtInfo["list"]
	if !ok {
		return nil, nil
	}

	var items []extInfoItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("could not decode ext info: [%v]", err)
	}

	return items, nil
}

type extInfoItem struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}
