// Package codec centralizes record encoding for pipeline outputs.
//
// Codec selection is a breaking-change boundary: if you change codecs,
// persisted records created by older codecs may no longer decode. Output
// files carry the codec name via their extension so readers can select
// the matching codec.
package codec

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "json+zstd":
		return Compressed(JSON{}, Zstd{}), true
	case "json+lz4":
		return Compressed(JSON{}, LZ4{}), true
	default:
		return nil, false
	}
}

// Ext returns the file extension for a codec name, e.g. ".json.zst"
// for "json+zstd". Unknown names fall back to ".bin".
func Ext(name string) string {
	switch name {
	case "json":
		return ".json"
	case "json+zstd":
		return ".json.zst"
	case "json+lz4":
		return ".json.lz4"
	default:
		return ".bin"
	}
}
