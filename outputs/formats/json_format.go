package formats

import (
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/valyala/fastjson"

	"github.com/storefront/dbquery/schema"
	"github.com/storefront/dbquery/storage"
)

// JSONFormatter writes one object per line.
type JSONFormatter struct {
	buf     []byte
	arena   *fastjson.Arena
	w       io.Writer
	columns []*schema.Column
}

func NewJSONFormatter(w io.Writer) *JSONFormatter {
	return &JSONFormatter{
		buf:   make([]byte, 0, 1024),
		arena: new(fastjson.Arena),
		w:     w,
	}
}

func (t *JSONFormatter) SetSchema(table *schema.Table) {
	t.columns = table.Columns
}

func (t *JSONFormatter) Write(values storage.Row) error {
	obj := t.arena.NewObject()
	for i := range t.columns {
		value, ok := values[t.columns[i].Name]
		if !ok {
			continue
		}
		obj.Set(t.columns[i].Name, ValueToJson(t.arena, value))
	}

	t.buf = obj.MarshalTo(t.buf)
	t.buf = append(t.buf, '\n')
	_, err := t.w.Write(t.buf)
	t.buf = t.buf[:0]
	t.arena.Reset()
	return err
}

func ValueToJson(arena *fastjson.Arena, value interface{}) *fastjson.Value {
	switch value := value.(type) {
	case nil:
		return arena.NewNull()
	case int64:
		return arena.NewNumberString(strconv.FormatInt(value, 10))
	case int:
		return arena.NewNumberInt(value)
	case float64:
		return arena.NewNumberFloat64(value)
	case bool:
		if value {
			return arena.NewTrue()
		}
		return arena.NewFalse()
	case string:
		return arena.NewString(value)
	case time.Time:
		return arena.NewString(value.Format(time.RFC3339))
	case []interface{}:
		arr := arena.NewArray()
		for i := range value {
			arr.SetArrayItem(i, ValueToJson(arena, value[i]))
		}
		return arr
	default:
		log.Printf("Invalid value of type '%T' to print. Using its string form.", value)
		return arena.NewString(fmt.Sprintf("%v", value))
	}
}

func (t *JSONFormatter) Close() error {
	return nil
}
