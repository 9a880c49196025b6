package api

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/fsdevblog/smm-panel/internal/domain"
)

// IntParam целое число из JSON. Принимает как число, так и строку с числом: клиенты панели
// отправляют id услуги и количество из полей формы.
type IntParam int64

func (p *IntParam) UnmarshalJSON(data []byte) error {
	raw := string(bytes.TrimSpace(data))
	if raw == "null" {
		return domain.NewInvalidInputError("value is required")
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return domain.NewInvalidInputError("%q is not an integer", raw)
	}
	*p = IntParam(v)
	return nil
}

func (p *IntParam) Int64() int64 {
	if p == nil {
		return 0
	}
	return int64(*p)
}
