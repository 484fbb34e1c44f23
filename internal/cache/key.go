package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Separator joins namespace segments and the parameter signature.
const Separator = ":"

var segmentRegexp = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// KeySerializationError reports parameters or namespaces that cannot be
// turned into a cache key.
type KeySerializationError struct {
	Namespace string
	Param     string
	Reason    string
}

func (e *KeySerializationError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("cache key for namespace %q: %s", e.Namespace, e.Reason)
	}
	return fmt.Sprintf("cache key for namespace %q: param %q: %s", e.Namespace, e.Param, e.Reason)
}

// Scope builds a scoped namespace such as "favorites:<userID>".
func Scope(namespace string, parts ...string) string {
	return strings.Join(append([]string{namespace}, parts...), Separator)
}

// ValidateNamespace checks that every segment of namespace is non-empty and
// free of separator and glob characters.
func ValidateNamespace(namespace string) error {
	if namespace == "" {
		return &KeySerializationError{Namespace: namespace, Reason: "empty namespace"}
	}
	for _, seg := range strings.Split(namespace, Separator) {
		if !segmentRegexp.MatchString(seg) {
			return &KeySerializationError{Namespace: namespace, Reason: fmt.Sprintf("invalid segment %q", seg)}
		}
	}
	return nil
}

// Pattern returns the trailing-wildcard pattern matching every key in namespace.
func Pattern(namespace string) string {
	return namespace + Separator + "*"
}

// NamespaceOf returns the namespace part of a derived key.
func NamespaceOf(key string) string {
	if i := strings.LastIndex(key, Separator); i >= 0 {
		return key[:i]
	}
	return key
}

// DeriveKey maps a namespace and a parameter set to "namespace:signature".
// The signature is the hex SHA-256 of a canonical encoding in which keys are
// sorted and every value carries a type tag, so equal parameter sets always
// yield the same key and different ones never collide on formatting.
func DeriveKey(namespace string, params map[string]any) (string, error) {
	if err := ValidateNamespace(namespace); err != nil {
		return "", err
	}

	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for _, name := range names {
		writeString(&b, name)
		b.WriteByte('=')
		if err := encodeValue(&b, reflect.ValueOf(params[name])); err != nil {
			return "", &KeySerializationError{Namespace: namespace, Param: name, Reason: err.Error()}
		}
		b.WriteByte(';')
	}

	sum := sha256.Sum256([]byte(b.String()))
	return namespace + Separator + hex.EncodeToString(sum[:]), nil
}

var timeType = reflect.TypeOf(time.Time{})

func writeString(b *strings.Builder, s string) {
	b.WriteString(strconv.Itoa(len(s)))
	b.WriteByte(':')
	b.WriteString(s)
}

func encodeValue(b *strings.Builder, v reflect.Value) error {
	if !v.IsValid() {
		b.WriteByte('n')
		return nil
	}

	if v.Type() == timeType {
		b.WriteByte('t')
		writeString(b, v.Interface().(time.Time).UTC().Format(time.RFC3339Nano))
		return nil
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			b.WriteByte('n')
			return nil
		}
		return encodeValue(b, v.Elem())

	case reflect.String:
		b.WriteByte('s')
		writeString(b, v.String())

	case reflect.Bool:
		if v.Bool() {
			b.WriteString("b1")
		} else {
			b.WriteString("b0")
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteByte('i')
		b.WriteString(strconv.FormatInt(v.Int(), 10))
		b.WriteByte(';')

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteByte('i')
		b.WriteString(strconv.FormatUint(v.Uint(), 10))
		b.WriteByte(';')

	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("unsupported float value %v", f)
		}
		b.WriteByte('f')
		b.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
		b.WriteByte(';')

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			b.WriteByte('n')
			return nil
		}
		b.WriteByte('l')
		b.WriteString(strconv.Itoa(v.Len()))
		b.WriteByte('[')
		for i := 0; i < v.Len(); i++ {
			if err := encodeValue(b, v.Index(i)); err != nil {
				return err
			}
			b.WriteByte(',')
		}
		b.WriteByte(']')

	default:
		return fmt.Errorf("unsupported type %s", v.Type())
	}
	return nil
}
