package contracts

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
)

// DecodeProperty разбирает одно объявление. Если строгий разбор не удался
// (например, price пришел строкой), поля разбираются по одному: некорректные
// остаются нулевыми и перечисляются в badFields, объявление не теряется.
func DecodeProperty(raw json.RawMessage) (PropertyDTO, []string, error) {
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return PropertyDTO{}, nil, errors.New("property is null")
	}

	var dto PropertyDTO
	if err := json.Unmarshal(raw, &dto); err == nil {
		return dto, nil, nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return PropertyDTO{}, nil, err
	}

	dto = PropertyDTO{}
	var badFields []string
	v := reflect.ValueOf(&dto).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		name := strings.Split(t.Field(i).Tag.Get("json"), ",")[0]
		value, ok := fields[name]
		if !ok || name == "" {
			continue
		}
		target := v.Field(i).Addr().Interface()
		if err := json.Unmarshal(value, target); err != nil {
			v.Field(i).Set(reflect.Zero(t.Field(i).Type))
			badFields = append(badFields, name)
		}
	}
	return dto, badFields, nil
}

// DecodeProperties разбирает массив объявлений поштучно.
// Элемент, который вообще не является объектом, пропускается и попадает в skipped.
func DecodeProperties(raws []json.RawMessage) ([]PropertyDTO, map[int][]string, []int) {
	dtos := make([]PropertyDTO, 0, len(raws))
	badFields := make(map[int][]string)
	var skipped []int
	for i, raw := range raws {
		dto, bad, err := DecodeProperty(raw)
		if err != nil {
			skipped = append(skipped, i)
			continue
		}
		if len(bad) > 0 {
			badFields[i] = bad
		}
		dtos = append(dtos, dto)
	}
	return dtos, badFields, skipped
}
