package query

import (
	"github.com/pkg/errors"
	"github.com/valyala/fastjson"
)

// ParseJSONArgs reads Args from a JSON object. Integral numbers become int64, others float64.
func ParseJSONArgs(data []byte) (Args, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse arguments")
	}
	if v.Type() != fastjson.TypeObject {
		return nil, errors.Errorf("arguments must be a JSON object, got %s", v.Type())
	}

	out, ok := jsonToGo(v).(map[string]interface{})
	if !ok {
		return nil, errors.New("arguments must be a JSON object")
	}
	return Args(out), nil
}

func jsonToGo(v *fastjson.Value) interface{} {
	switch v.Type() {
	case fastjson.TypeObject:
		obj := v.GetObject()
		out := make(map[string]interface{}, obj.Len())
		obj.Visit(func(key []byte, v *fastjson.Value) {
			out[string(key)] = jsonToGo(v)
		})
		return out
	case fastjson.TypeArray:
		items := v.GetArray()
		out := make([]interface{}, len(items))
		for i := range items {
			out[i] = jsonToGo(items[i])
		}
		return out
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNumber:
		if i, err := v.Int64(); err == nil {
			return i
		}
		return v.GetFloat64()
	case fastjson.TypeTrue:
		return true
	case fastjson.TypeFalse:
		return false
	default:
		return nil
	}
}
