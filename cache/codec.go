package cache

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/valyala/fastjson"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

// ResultSet is a cached query result.
// In count mode IDs is empty and Found holds the count.
type ResultSet struct {
	IDs   []interface{}
	Found int
	Pages int
}

func valueToJSON(arena *fastjson.Arena, v interface{}) *fastjson.Value {
	switch v := v.(type) {
	case nil:
		return arena.NewNull()
	case int64:
		return arena.NewNumberString(strconv.FormatInt(v, 10))
	case float64:
		return arena.NewNumberFloat64(v)
	case bool:
		if v {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	case string:
		return arena.NewString(v)
	case time.Time:
		return arena.NewString(v.UTC().Format(time.RFC3339Nano))
	default:
		return arena.NewString(fmt.Sprint(v))
	}
}

// jsonToValue decodes scalars only. Values are normalized by the table afterwards.
func jsonToValue(v *fastjson.Value) interface{} {
	switch v.Type() {
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

func encodeResultSet(rs *ResultSet) []byte {
	var arena fastjson.Arena
	obj := arena.NewObject()

	ids := arena.NewArray()
	for i := range rs.IDs {
		ids.SetArrayItem(i, valueToJSON(&arena, rs.IDs[i]))
	}
	obj.Set("ids", ids)
	obj.Set("found", arena.NewNumberInt(rs.Found))
	obj.Set("pages", arena.NewNumberInt(rs.Pages))

	return obj.MarshalTo(nil)
}

func decodeResultSet(table *schema.Table, data []byte) (*ResultSet, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse cached result set")
	}

	if !v.Exists("ids") {
		return nil, errors.New("cached result set has no ids")
	}
	items := v.GetArray("ids")
	rs := &ResultSet{
		IDs:   make([]interface{}, len(items)),
		Found: v.GetInt("found"),
		Pages: v.GetInt("pages"),
	}
	for i := range items {
		id, err := table.ID(jsonToValue(items[i]))
		if err != nil {
			return nil, errors.Wrap(err, "couldn't read cached id")
		}
		rs.IDs[i] = id
	}
	return rs, nil
}

func encodeRow(table *schema.Table, row storage.Row) []byte {
	var arena fastjson.Arena
	obj := arena.NewObject()
	for _, c := range table.Columns {
		if v, ok := row[c.Name]; ok {
			obj.Set(c.Name, valueToJSON(&arena, v))
		}
	}
	return obj.MarshalTo(nil)
}

func decodeRow(table *schema.Table, data []byte) (storage.Row, error) {
	var p fastjson.Parser
	v, err := p.ParseBytes(data)
	if err != nil {
		return nil, errors.Wrap(err, "couldn't parse cached row")
	}
	obj, err := v.Object()
	if err != nil {
		return nil, errors.Wrap(err, "cached row isn't an object")
	}

	raw := make(map[string]interface{}, obj.Len())
	obj.Visit(func(key []byte, v *fastjson.Value) {
		raw[string(key)] = jsonToValue(v)
	})
	return storage.NormalizeRow(table, raw)
}
