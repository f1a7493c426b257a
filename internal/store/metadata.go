package store

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"time"
)

// modelInfo holds cached reflection results for a model type.
type modelInfo struct {
	tableName        string
	pkName           string
	columns          []string // db column names, PK included
	fields           []string // Go field names, order matches columns
	fieldToColumnMap map[string]string
	columnToFieldMap map[string]string
}

// modelInfoCache stores *modelInfo keyed by reflect.Type.
var modelInfoCache sync.Map

// getModelInfo retrieves or computes metadata for a model type.
// Columns are taken from `db` struct tags; fields without a tag are skipped.
// The column tagged "id" is the primary key.
func getModelInfo(modelType reflect.Type) (*modelInfo, error) {
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	if modelType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("store: expected a struct type, got %s", modelType.Kind())
	}

	if cached, ok := modelInfoCache.Load(modelType); ok {
		return cached.(*modelInfo), nil
	}

	info := modelInfo{
		fieldToColumnMap: make(map[string]string),
		columnToFieldMap: make(map[string]string),
	}

	var walk func(t reflect.Type)
	walk = func(t reflect.Type) {
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			if field.Anonymous && field.Type.Kind() == reflect.Struct {
				walk(field.Type)
				continue
			}
			tag := field.Tag.Get("db")
			if tag == "" || tag == "-" || !field.IsExported() {
				continue
			}
			col := strings.Split(tag, ",")[0]
			if col == "id" {
				info.pkName = col
			}
			info.columns = append(info.columns, col)
			info.fields = append(info.fields, field.Name)
			info.fieldToColumnMap[field.Name] = col
			info.columnToFieldMap[col] = field.Name
		}
	}
	walk(modelType)

	if info.pkName == "" {
		return nil, fmt.Errorf("store: primary key column 'id' not found in struct %s", modelType.Name())
	}
	info.tableName = tableNameFromType(modelType)

	actual, _ := modelInfoCache.LoadOrStore(modelType, &info)
	return actual.(*modelInfo), nil
}

// tableNameFromType asks the model for its table name via Tabler, falling
// back to the lowercased, pluralized type name.
func tableNameFromType(modelType reflect.Type) string {
	if modelType.Kind() == reflect.Ptr {
		modelType = modelType.Elem()
	}
	inst := reflect.New(modelType)
	if tabler, ok := inst.Interface().(Tabler); ok {
		if name := tabler.TableName(); name != "" {
			return name
		}
	}
	return strings.ToLower(modelType.Name()) + "s"
}

// valuesForColumns extracts the field values backing the given columns.
// modelPtr must be a pointer to a struct described by info.
func valuesForColumns(modelPtr interface{}, info *modelInfo, columns []string) ([]interface{}, error) {
	v := reflect.ValueOf(modelPtr)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil, fmt.Errorf("store: expected a struct pointer, got %T", modelPtr)
	}

	values := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		fieldName, ok := info.columnToFieldMap[col]
		if !ok {
			return nil, fmt.Errorf("store: column %q not found in metadata for %s", col, v.Type().Name())
		}
		fieldVal := v.FieldByName(fieldName)
		if !fieldVal.IsValid() || !fieldVal.CanInterface() {
			return nil, fmt.Errorf("store: field %q (column %q) not accessible in %s", fieldName, col, v.Type().Name())
		}
		values = append(values, fieldVal.Interface())
	}
	return values, nil
}

// changedColumns compares original and updated and returns the db columns
// whose values differ, mapped to the updated values. The primary key is
// never reported.
func changedColumns(original, updated interface{}, info *modelInfo) (map[string]interface{}, error) {
	oVal := reflect.ValueOf(original)
	uVal := reflect.ValueOf(updated)
	if oVal.Kind() == reflect.Ptr {
		oVal = oVal.Elem()
	}
	if uVal.Kind() == reflect.Ptr {
		uVal = uVal.Elem()
	}
	if oVal.Type() != uVal.Type() {
		return nil, fmt.Errorf("store: cannot diff %s against %s", oVal.Type(), uVal.Type())
	}

	changed := make(map[string]interface{})
	for i, fieldName := range info.fields {
		col := info.columns[i]
		if col == info.pkName {
			continue
		}
		oField := oVal.FieldByName(fieldName)
		uField := uVal.FieldByName(fieldName)
		if !oField.IsValid() || !uField.IsValid() {
			continue
		}
		if !fieldEqual(oField.Interface(), uField.Interface()) {
			changed[col] = uField.Interface()
		}
	}

	// updated_at always moves on save; it is not a change by itself.
	if len(changed) == 1 {
		if _, only := changed["updated_at"]; only {
			delete(changed, "updated_at")
		}
	}
	return changed, nil
}

// fieldEqual compares two field values. Times are compared by instant, not
// representation, so a cache or database roundtrip does not read as a change.
func fieldEqual(a, b interface{}) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return reflect.DeepEqual(a, b)
}

// baseModelOf returns a pointer to the embedded BaseModel.
func baseModelOf(modelPtr interface{}) *BaseModel {
	v := reflect.ValueOf(modelPtr)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	bm := v.FieldByName("BaseModel")
	if bm.IsValid() && bm.Type() == reflect.TypeOf(BaseModel{}) && bm.CanAddr() {
		return bm.Addr().Interface().(*BaseModel)
	}
	return nil
}
