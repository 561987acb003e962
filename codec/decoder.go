package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"math/big"
	"reflect"
	"sync"

	"github.com/holiman/uint256"
)

// Result represents a SCALE Result: tag 0x00 followed by the ok value, or
// tag 0x01 followed by the err value.
type Result struct {
	mode int
	set  bool
	ok   interface{}
	err  interface{}
}

const (
	OK  = 0
	Err = 1
)

// NewResult returns an unset Result whose ok and err prototypes fix the
// types decoded for each branch.
func NewResult(okPrototype, errPrototype interface{}) Result {
	return Result{ok: okPrototype, err: errPrototype}
}

// Set stores value under the given mode.
func (r *Result) Set(mode int, value interface{}) error {
	if mode != OK && mode != Err {
		return fmt.Errorf("invalid result mode: %d", mode)
	}
	r.mode = mode
	r.set = true
	if mode == OK {
		r.ok = value
	} else {
		r.err = value
	}
	return nil
}

func (r Result) IsSet() bool {
	return r.set
}

// IsOK reports whether the result holds the ok branch.
func (r Result) IsOK() bool {
	return r.set && r.mode == OK
}

// Unwrap returns the ok and err values; only one of them is meaningful,
// according to IsOK.
func (r Result) Unwrap() (ok interface{}, err interface{}) {
	return r.ok, r.err
}

// indirect walks down v allocating pointers as needed, until it gets to a non-pointer.
func indirect(dstv reflect.Value) (elem reflect.Value) {
	dstv0 := dstv
	haveAddr := false
	for {
		if dstv.Kind() == reflect.Interface && !dstv.IsNil() {
			e := dstv.Elem()
			if e.Kind() == reflect.Ptr && !e.IsNil() && e.Elem().Kind() == reflect.Ptr {
				haveAddr = false
				dstv = e
				continue
			}
		}
		if dstv.Kind() != reflect.Ptr {
			break
		}
		if dstv.CanSet() {
			break
		}
		if dstv.Elem().Kind() == reflect.Interface && dstv.Elem().Elem() == dstv {
			dstv = dstv.Elem()
			break
		}
		if dstv.IsNil() {
			dstv.Set(reflect.New(dstv.Type().Elem()))
		}
		if haveAddr {
			dstv = dstv0
			haveAddr = false
		} else {
			dstv = dstv.Elem()
		}
	}
	elem = dstv
	return
}

// Unmarshal takes data and a destination pointer to unmarshal the data to.
// Bytes left over after the value are ignored; see UnmarshalExact.
func Unmarshal(data []byte, dst interface{}) (err error) {
	_, err = unmarshalBuffer(data, dst)
	return
}

// UnmarshalExact is Unmarshal that also fails when input remains after the value.
func UnmarshalExact(data []byte, dst interface{}) error {
	buf, err := unmarshalBuffer(data, dst)
	if err != nil {
		return err
	}
	if buf.Len() != 0 {
		return fmt.Errorf("%w: %d", ErrTrailingBytes, buf.Len())
	}
	return nil
}

func unmarshalBuffer(data []byte, dst interface{}) (*bytes.Buffer, error) {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedDestination, dst)
	}

	buf := bytes.NewBuffer(data)
	ds := decodeState{Reader: buf}
	if err := ds.unmarshal(indirect(dstv)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unmarshaler is implemented by types with a custom SCALE form.
type Unmarshaler interface {
	UnmarshalSCALE(io.Reader) error
}

// Decoder is used to decode from an io.Reader
type Decoder struct {
	decodeState
}

// Decode accepts a pointer to a destination and decodes into the supplied destination
func (d *Decoder) Decode(dst interface{}) (err error) {
	dstv := reflect.ValueOf(dst)
	if dstv.Kind() != reflect.Ptr || dstv.IsNil() {
		err = fmt.Errorf("%w: %T", ErrUnsupportedDestination, dst)
		return
	}

	return d.unmarshal(indirect(dstv))
}

// NewDecoder is constructor for Decoder
func NewDecoder(r io.Reader) (d *Decoder) {
	d = &Decoder{
		decodeState{r},
	}
	return
}

type decodeState struct {
	io.Reader
}

var (
	unmarshalerType = reflect.TypeOf((*Unmarshaler)(nil)).Elem()
	byteType        = reflect.TypeOf(byte(0))
)

var primitiveBase = map[reflect.Kind]reflect.Type{
	reflect.Bool:   reflect.TypeOf(false),
	reflect.Int:    reflect.TypeOf(int(0)),
	reflect.Int8:   reflect.TypeOf(int8(0)),
	reflect.Int16:  reflect.TypeOf(int16(0)),
	reflect.Int32:  reflect.TypeOf(int32(0)),
	reflect.Int64:  reflect.TypeOf(int64(0)),
	reflect.String: reflect.TypeOf(""),
	reflect.Uint:   reflect.TypeOf(uint(0)),
	reflect.Uint8:  reflect.TypeOf(uint8(0)),
	reflect.Uint16: reflect.TypeOf(uint16(0)),
	reflect.Uint32: reflect.TypeOf(uint32(0)),
	reflect.Uint64: reflect.TypeOf(uint64(0)),
}

func (ds *decodeState) unmarshal(dstv reflect.Value) (err error) {
	if dstv.CanAddr() && dstv.Addr().Type().Implements(unmarshalerType) {
		return dstv.Addr().Interface().(Unmarshaler).UnmarshalSCALE(ds.Reader)
	}

	if dstv.CanAddr() {
		vdt, ok := dstv.Addr().Interface().(VaryingDataType)
		if ok {
			return ds.decodeVaryingDataType(vdt)
		}
	}

	in := dstv.Interface()
	switch in.(type) {
	case *big.Int:
		err = ds.decodeBigInt(dstv)
	case *uint256.Int:
		var v *uint256.Int
		v, err = DecodeCompact(ds.Reader)
		if err == nil {
			dstv.Set(reflect.ValueOf(v))
		}
	case int, uint:
		err = ds.decodeUint(dstv)
	case int8, uint8, int16, uint16, int32, uint32, int64, uint64:
		err = ds.decodeFixedWidthInt(dstv)
	case []byte:
		err = ds.decodeBytes(dstv)
	case string:
		err = ds.decodeBytes(dstv)
	case bool:
		err = ds.decodeBool(dstv)
	case Result:
		err = ds.decodeResult(dstv)
	default:
		t := reflect.TypeOf(in)
		switch t.Kind() {
		case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64, reflect.String, reflect.Uint,
			reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			err = ds.decodeCustomPrimitive(dstv)
		case reflect.Ptr:
			err = ds.decodePointer(dstv)
		case reflect.Struct:
			err = ds.decodeStruct(dstv)
		case reflect.Array:
			err = ds.decodeArray(dstv)
		case reflect.Slice:
			err = ds.decodeSlice(dstv)
		case reflect.Map:
			err = ds.decodeMap(dstv)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedType, in)
		}
	}
	return
}

func (ds *decodeState) decodeCustomPrimitive(dstv reflect.Value) (err error) {
	base, ok := primitiveBase[dstv.Kind()]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedCustomPrimitive, dstv.Type())
	}
	temp := reflect.New(base)
	if err = ds.unmarshal(temp.Elem()); err != nil {
		return
	}
	dstv.Set(temp.Elem().Convert(dstv.Type()))
	return
}

func (ds *decodeState) ReadByte() (byte, error) {
	b := make([]byte, 1)
	if _, err := io.ReadFull(ds.Reader, b); err != nil {
		return 0, err
	}
	return b[0], nil
}

// remaining reports how many bytes are left when the reader knows it.
func (ds *decodeState) remaining() (int, bool) {
	if l, ok := ds.Reader.(interface{ Len() int }); ok {
		return l.Len(), true
	}
	return 0, false
}

func (ds *decodeState) decodeResult(dstv reflect.Value) (err error) {
	res := dstv.Interface().(Result)
	var rb byte
	rb, err = ds.ReadByte()
	if err != nil {
		return
	}
	var mode int
	var prototype interface{}
	switch rb {
	case 0x00:
		mode, prototype = OK, res.ok
	case 0x01:
		mode, prototype = Err, res.err
	default:
		return fmt.Errorf("%w: tag %d", ErrUnsupportedResult, rb)
	}
	if prototype == nil {
		return fmt.Errorf("%w: no prototype for tag %d", ErrResultNotSet, rb)
	}
	tempElem := reflect.New(reflect.TypeOf(prototype))
	tempElem.Elem().Set(reflect.ValueOf(prototype))
	if err = ds.unmarshal(tempElem.Elem()); err != nil {
		return
	}
	if err = res.Set(mode, tempElem.Elem().Interface()); err != nil {
		return
	}
	dstv.Set(reflect.ValueOf(res))
	return
}

func (ds *decodeState) decodePointer(dstv reflect.Value) (err error) {
	var rb byte
	rb, err = ds.ReadByte()
	if err != nil {
		return
	}
	switch rb {
	case 0x00:
		dstv.Set(reflect.Zero(dstv.Type()))
	case 0x01:
		tempElem := reflect.New(dstv.Type().Elem())
		if err = ds.unmarshal(tempElem.Elem()); err != nil {
			return
		}
		dstv.Set(tempElem)
	default:
		err = fmt.Errorf("%w: tag %d", ErrUnsupportedOption, rb)
	}
	return
}

func (ds *decodeState) decodeVaryingDataType(vdt VaryingDataType) (err error) {
	var b byte
	b, err = ds.ReadByte()
	if err != nil {
		return
	}

	val, err := vdt.ValueAt(uint(b))
	if err != nil {
		return fmt.Errorf("%w: for key %d %v", ErrUnknownVaryingDataTypeValue, uint(b), err)
	}
	if val == nil {
		return vdt.SetValue(nil)
	}

	tempVal := reflect.New(reflect.TypeOf(val))
	tempVal.Elem().Set(reflect.ValueOf(val))
	if err = ds.unmarshal(tempVal.Elem()); err != nil {
		return
	}
	return vdt.SetValue(tempVal.Elem().Interface())
}

func (ds *decodeState) decodeSlice(dstv reflect.Value) (err error) {
	l, err := ds.decodeLength()
	if err != nil {
		return
	}
	elemType := dstv.Type().Elem()
	if left, ok := ds.remaining(); ok && elemType.Size() > 0 && l > uint64(left) {
		return fmt.Errorf("%w: %d elements, %d bytes", ErrLengthExceedsInput, l, left)
	}
	temp := reflect.MakeSlice(dstv.Type(), 0, int(l))
	for i := uint64(0); i < l; i++ {
		tempElem := reflect.New(elemType).Elem()
		if err = ds.unmarshal(tempElem); err != nil {
			return
		}
		temp = reflect.Append(temp, tempElem)
	}
	dstv.Set(temp)
	return
}

func (ds *decodeState) decodeArray(dstv reflect.Value) (err error) {
	temp := reflect.New(dstv.Type()).Elem()
	if dstv.Type().Elem() == byteType {
		raw := make([]byte, temp.Len())
		if _, err = io.ReadFull(ds.Reader, raw); err != nil {
			return fmt.Errorf("reading %s: %w", dstv.Type(), err)
		}
		reflect.Copy(temp, reflect.ValueOf(raw))
		dstv.Set(temp)
		return
	}
	for i := 0; i < temp.Len(); i++ {
		if err = ds.unmarshal(temp.Index(i)); err != nil {
			return
		}
	}
	dstv.Set(temp)
	return
}

// FieldIndex represents an index of a field within a struct.
type FieldIndex struct {
	fieldIndex int
}

// fieldScaleIndicesCache remembers which fields of a struct type take part in
// its encoding: exported fields not tagged `scale:"-"`, in declaration order.
type fieldScaleIndicesCache struct {
	mu      sync.RWMutex
	indices map[reflect.Type][]FieldIndex
}

func (c *fieldScaleIndicesCache) fieldScaleIndices(v interface{}) (reflect.Value, []FieldIndex, error) {
	value := reflect.ValueOf(v)
	if value.Kind() != reflect.Struct {
		return reflect.Value{}, nil, fmt.Errorf("expected a struct, got %T", v)
	}

	typ := value.Type()
	c.mu.RLock()
	indices, ok := c.indices[typ]
	c.mu.RUnlock()
	if ok {
		return value, indices, nil
	}

	for i := 0; i < value.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" || field.Tag.Get("scale") == "-" {
			continue
		}
		indices = append(indices, FieldIndex{fieldIndex: i})
	}
	c.mu.Lock()
	c.indices[typ] = indices
	c.mu.Unlock()
	return value, indices, nil
}

var cache = &fieldScaleIndicesCache{indices: make(map[reflect.Type][]FieldIndex)}

func (ds *decodeState) decodeMap(dstv reflect.Value) (err error) {
	numberOfTuples, err := ds.decodeLength()
	if err != nil {
		return fmt.Errorf("decoding length: %w", err)
	}
	if left, ok := ds.remaining(); ok && numberOfTuples > uint64(left) {
		return fmt.Errorf("%w: %d pairs, %d bytes", ErrLengthExceedsInput, numberOfTuples, left)
	}

	m := reflect.MakeMap(dstv.Type())
	for i := uint64(0); i < numberOfTuples; i++ {
		tempKey := reflect.New(dstv.Type().Key()).Elem()
		if err = ds.unmarshal(tempKey); err != nil {
			return fmt.Errorf("decoding key %d of %d: %w", i+1, numberOfTuples, err)
		}

		tempElem := reflect.New(dstv.Type().Elem()).Elem()
		if err = ds.unmarshal(tempElem); err != nil {
			return fmt.Errorf("decoding value %d of %d: %w", i+1, numberOfTuples, err)
		}

		m.SetMapIndex(tempKey, tempElem)
	}
	dstv.Set(m)
	return nil
}

// decodeStruct decodes a SCALE tuple into the exported fields of a struct,
// in declaration order.
func (ds *decodeState) decodeStruct(dstv reflect.Value) (err error) {
	v, indices, err := cache.fieldScaleIndices(dstv.Interface())
	if err != nil {
		return fmt.Errorf("failed to get field indices: %w", err)
	}

	temp := reflect.New(v.Type()).Elem()
	for _, index := range indices {
		field := temp.Field(index.fieldIndex)
		if !field.CanInterface() {
			continue
		}

		// Result and VaryingDataType fields carry prototypes in the destination.
		if !v.Field(index.fieldIndex).IsZero() {
			field.Set(v.Field(index.fieldIndex))
		}

		if err = ds.unmarshal(field); err != nil {
			return fmt.Errorf("field %s: %w", v.Type().Field(index.fieldIndex).Name, err)
		}
	}
	dstv.Set(temp)
	return nil
}

// decodeBool accepts only 0x00 and 0x01.
func (ds *decodeState) decodeBool(dstv reflect.Value) (err error) {
	rb, err := ds.ReadByte()
	if err != nil {
		return
	}

	var b bool
	switch rb {
	case 0x00:
	case 0x01:
		b = true
	default:
		return fmt.Errorf("%w: byte %d", errDecodeBool, rb)
	}
	dstv.Set(reflect.ValueOf(b))
	return
}

// decodeUint decodes a compact integer into an int or uint destination.
func (ds *decodeState) decodeUint(dstv reflect.Value) (err error) {
	v, err := DecodeCompact(ds.Reader)
	if err != nil {
		return
	}
	limit := uint64(math.MaxUint)
	if dstv.Kind() == reflect.Int {
		limit = math.MaxInt
	}
	if !v.IsUint64() || v.Uint64() > limit {
		return fmt.Errorf("%w: %s into %s", ErrCompactOverflow, v.Dec(), dstv.Type())
	}
	dstv.Set(reflect.ValueOf(v.Uint64()).Convert(dstv.Type()))
	return
}

// decodeLength reads a compact length prefix.
func (ds *decodeState) decodeLength() (uint64, error) {
	v, err := DecodeCompact(ds.Reader)
	if err != nil {
		return 0, fmt.Errorf("decoding length: %w", err)
	}
	if !v.IsUint64() || v.Uint64() > math.MaxUint32 {
		return 0, fmt.Errorf("%w: length %s", ErrCompactOverflow, v.Dec())
	}
	return v.Uint64(), nil
}

// decodeBytes is used to decode with a destination of []byte or string type
func (ds *decodeState) decodeBytes(dstv reflect.Value) (err error) {
	length, err := ds.decodeLength()
	if err != nil {
		return
	}
	if left, ok := ds.remaining(); ok && length > uint64(left) {
		return fmt.Errorf("%w: %d bytes, %d left", ErrLengthExceedsInput, length, left)
	}

	b := make([]byte, length)
	if length > 0 {
		if _, err = io.ReadFull(ds.Reader, b); err != nil {
			return
		}
	}

	dstv.Set(reflect.ValueOf(b).Convert(dstv.Type()))
	return
}

// decodeBigInt decodes a compact integer into a *big.Int
func (ds *decodeState) decodeBigInt(dstv reflect.Value) (err error) {
	v, err := DecodeCompact(ds.Reader)
	if err != nil {
		return
	}
	dstv.Set(reflect.ValueOf(v.ToBig()))
	return
}

// decodeFixedWidthInt decodes little-endian fixed width integers
func (ds *decodeState) decodeFixedWidthInt(dstv reflect.Value) (err error) {
	var out interface{}
	switch dstv.Interface().(type) {
	case int8, uint8:
		var b byte
		if b, err = ds.ReadByte(); err != nil {
			return
		}
		out = b
	case int16, uint16:
		buf := make([]byte, 2)
		if _, err = io.ReadFull(ds.Reader, buf); err != nil {
			return
		}
		out = binary.LittleEndian.Uint16(buf)
	case int32, uint32:
		buf := make([]byte, 4)
		if _, err = io.ReadFull(ds.Reader, buf); err != nil {
			return
		}
		out = binary.LittleEndian.Uint32(buf)
	case int64, uint64:
		buf := make([]byte, 8)
		if _, err = io.ReadFull(ds.Reader, buf); err != nil {
			return
		}
		out = binary.LittleEndian.Uint64(buf)
	default:
		return fmt.Errorf("invalid type: %s", dstv.Type())
	}
	dstv.Set(reflect.ValueOf(out).Convert(dstv.Type()))
	return
}

// EncodeVaryingDataType is implemented by enums that encode as a one-byte
// discriminant followed by the variant payload (nil for unit variants).
type EncodeVaryingDataType interface {
	IndexValue() (int, interface{}, error)
}

// VaryingDataType is the decoding side of EncodeVaryingDataType. ValueAt
// returns a prototype for the payload of variant index (nil for unit variants).
type VaryingDataType interface {
	ValueAt(index uint) (interface{}, error)
	SetValue(interface{}) error
}
