package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"reflect"
	"sort"

	"github.com/holiman/uint256"
)

// Encoder scale encodes to a given io.Writer.
type Encoder struct {
	encodeState
}

// NewEncoder creates a new encoder with the given writer.
func NewEncoder(writer io.Writer) (encoder *Encoder) {
	return &Encoder{
		encodeState: encodeState{
			Writer:                 writer,
			fieldScaleIndicesCache: cache,
		},
	}
}

// Encode scale encodes value to the encoder writer.
func (e *Encoder) Encode(value interface{}) (err error) {
	return e.marshal(value)
}

// Marshal takes in an interface{} and attempts to marshal into []byte
func Marshal(v interface{}) (b []byte, err error) {
	buffer := bytes.NewBuffer(nil)
	es := encodeState{
		Writer:                 buffer,
		fieldScaleIndicesCache: cache,
	}
	err = es.marshal(v)
	if err != nil {
		return
	}
	b = buffer.Bytes()
	return
}

// Marshaler is implemented by types with a custom SCALE form.
type Marshaler interface {
	MarshalSCALE() ([]byte, error)
}

// MustMarshal runs Marshal and panics on error.
func MustMarshal(v interface{}) (b []byte) {
	b, err := Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

type encodeState struct {
	io.Writer
	*fieldScaleIndicesCache
}

func (es *encodeState) marshal(in interface{}) (err error) {
	if in == nil {
		return fmt.Errorf("%w: nil", ErrUnsupportedType)
	}

	marshaler, ok := in.(Marshaler)
	if ok {
		var bytes []byte
		bytes, err = marshaler.MarshalSCALE()
		if err != nil {
			return
		}
		_, err = es.Write(bytes)
		return
	}

	vdt, ok := in.(EncodeVaryingDataType)
	if ok {
		err = es.encodeVaryingDataType(vdt)
		return
	}

	switch in := in.(type) {
	case int:
		err = es.encodeUint(uint64(in))
	case uint:
		err = es.encodeUint(uint64(in))
	case int8, uint8, int16, uint16, int32, uint32, int64, uint64:
		err = es.encodeFixedWidthInt(in)
	case *big.Int:
		err = es.encodeBigInt(in)
	case *uint256.Int:
		err = EncodeCompact(es, in)
	case []byte:
		err = es.encodeBytes(in)
	case string:
		err = es.encodeBytes([]byte(in))
	case bool:
		err = es.encodeBool(in)
	case Result:
		err = es.encodeResult(in)
	default:
		switch reflect.TypeOf(in).Kind() {
		case reflect.Bool, reflect.Int, reflect.Int8, reflect.Int16,
			reflect.Int32, reflect.Int64, reflect.String, reflect.Uint,
			reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			err = es.encodeCustomPrimitive(in)
		case reflect.Ptr:
			// Pointers are Options: nil is None, anything else is Some.
			elem := reflect.ValueOf(in).Elem()
			switch elem.IsValid() {
			case false:
				_, err = es.Write([]byte{0})
			default:
				_, err = es.Write([]byte{1})
				if err != nil {
					return
				}
				err = es.marshal(elem.Interface())
			}
		case reflect.Struct:
			err = es.encodeStruct(in)
		case reflect.Array:
			err = es.encodeArray(in)
		case reflect.Slice:
			err = es.encodeSlice(in)
		case reflect.Map:
			err = es.encodeMap(in)
		default:
			err = fmt.Errorf("%w: %T", ErrUnsupportedType, in)
		}
	}
	return
}

// encodeCustomPrimitive encodes named types whose underlying type is a primitive.
func (es *encodeState) encodeCustomPrimitive(in interface{}) (err error) {
	base, ok := primitiveBase[reflect.TypeOf(in).Kind()]
	if !ok {
		return fmt.Errorf("%w: %T", ErrUnsupportedCustomPrimitive, in)
	}
	return es.marshal(reflect.ValueOf(in).Convert(base).Interface())
}

// encodeResult writes the 0x00/0x01 tag followed by the ok or err value.
func (es *encodeState) encodeResult(res Result) (err error) {
	if !res.IsSet() {
		err = fmt.Errorf("%w: %+v", ErrResultNotSet, res)
		return
	}

	var in interface{}
	switch res.mode {
	case OK:
		_, err = es.Write([]byte{0})
		in = res.ok
	case Err:
		_, err = es.Write([]byte{1})
		in = res.err
	}
	if err != nil {
		return
	}
	return es.marshal(in)
}

// encodeVaryingDataType encodes varying data types with discriminator
func (es *encodeState) encodeVaryingDataType(vdt EncodeVaryingDataType) (err error) {
	index, value, err := vdt.IndexValue()
	if err != nil {
		return
	}
	_, err = es.Write([]byte{byte(index)})
	if err != nil || value == nil {
		return
	}
	err = es.marshal(value)
	return
}

// encodeSlice encodes a slice with length prefix
func (es *encodeState) encodeSlice(in interface{}) (err error) {
	v := reflect.ValueOf(in)
	err = es.encodeLength(v.Len())
	if err != nil {
		return
	}
	for i := 0; i < v.Len(); i++ {
		err = es.marshal(v.Index(i).Interface())
		if err != nil {
			return
		}
	}
	return
}

// encodeArray encodes an array without length prefix
func (es *encodeState) encodeArray(in interface{}) (err error) {
	v := reflect.ValueOf(in)
	if v.Type().Elem() == byteType {
		raw := make([]byte, v.Len())
		reflect.Copy(reflect.ValueOf(raw), v)
		_, err = es.Write(raw)
		return
	}
	for i := 0; i < v.Len(); i++ {
		err = es.marshal(v.Index(i).Interface())
		if err != nil {
			return
		}
	}
	return
}

// encodeMap encodes a map as a length-prefixed sequence of pairs ordered by
// encoded key, which is the order a BTreeMap on the other side produces.
func (es *encodeState) encodeMap(in interface{}) (err error) {
	v := reflect.ValueOf(in)
	err = es.encodeLength(v.Len())
	if err != nil {
		return fmt.Errorf("encoding length: %w", err)
	}

	type pair struct{ key, value []byte }
	pairs := make([]pair, 0, v.Len())
	iterator := v.MapRange()
	for iterator.Next() {
		k, err := Marshal(iterator.Key().Interface())
		if err != nil {
			return fmt.Errorf("encoding map key: %w", err)
		}
		val, err := Marshal(iterator.Value().Interface())
		if err != nil {
			return fmt.Errorf("encoding map value: %w", err)
		}
		pairs = append(pairs, pair{k, val})
	}
	sort.Slice(pairs, func(i, j int) bool { return bytes.Compare(pairs[i].key, pairs[j].key) < 0 })
	for _, p := range pairs {
		if _, err = es.Write(p.key); err != nil {
			return
		}
		if _, err = es.Write(p.value); err != nil {
			return
		}
	}
	return nil
}

// encodeBigInt encodes a non-negative big.Int in compact form
func (es *encodeState) encodeBigInt(i *big.Int) (err error) {
	switch {
	case i == nil:
		return errBigIntIsNil
	case i.Sign() < 0:
		return fmt.Errorf("%w: %s", ErrNegativeInteger, i)
	}
	v, overflow := uint256.FromBig(i)
	if overflow {
		return fmt.Errorf("%w: %s", ErrCompactOverflow, i)
	}
	return EncodeCompact(es, v)
}

// encodeBool encodes a boolean value
func (es *encodeState) encodeBool(l bool) (err error) {
	switch l {
	case true:
		_, err = es.Write([]byte{0x01})
	case false:
		_, err = es.Write([]byte{0x00})
	}
	return
}

// encodeBytes encodes a byte slice with length prefix
func (es *encodeState) encodeBytes(b []byte) (err error) {
	err = es.encodeLength(len(b))
	if err != nil {
		return
	}

	_, err = es.Write(b)
	return
}

// encodeFixedWidthInt encodes fixed width integers in little endian
func (es *encodeState) encodeFixedWidthInt(i interface{}) (err error) {
	switch i := i.(type) {
	case int8:
		err = binary.Write(es, binary.LittleEndian, byte(i))
	case uint8:
		err = binary.Write(es, binary.LittleEndian, i)
	case int16:
		err = binary.Write(es, binary.LittleEndian, uint16(i))
	case uint16:
		err = binary.Write(es, binary.LittleEndian, i)
	case int32:
		err = binary.Write(es, binary.LittleEndian, uint32(i))
	case uint32:
		err = binary.Write(es, binary.LittleEndian, i)
	case int64:
		err = binary.Write(es, binary.LittleEndian, uint64(i))
	case uint64:
		err = binary.Write(es, binary.LittleEndian, i)
	default:
		err = fmt.Errorf("invalid type: %T", i)
	}
	return
}

// encodeStruct encodes struct fields in declaration order
func (es *encodeState) encodeStruct(in interface{}) (err error) {
	v, indices, err := es.fieldScaleIndices(in)
	if err != nil {
		return
	}
	for _, i := range indices {
		field := v.Field(i.fieldIndex)
		if !field.CanInterface() {
			continue
		}
		err = es.marshal(field.Interface())
		if err != nil {
			return fmt.Errorf("field %s: %w", v.Type().Field(i.fieldIndex).Name, err)
		}
	}
	return
}

// encodeLength encodes the length of a collection
func (es *encodeState) encodeLength(l int) (err error) {
	return es.encodeUint(uint64(l))
}

// encodeUint encodes int and uint in compact form
func (es *encodeState) encodeUint(i uint64) (err error) {
	return EncodeCompact(es, uint256.NewInt(i))
}
