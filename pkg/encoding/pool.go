package encoding

import (
	"bytes"
	"encoding/xml"
	"sync"
)

// BufferPool pools bytes.Buffer for XML request and response bodies
var BufferPool = sync.Pool{
	New: func() interface{} {
		return new(bytes.Buffer)
	},
}

// GetBuffer retrieves an empty bytes.Buffer from the pool
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer returns a bytes.Buffer to the pool
func PutBuffer(buf *bytes.Buffer) {
	// Don't pool buffers that grew too large (>64KB)
	if buf.Cap() > 64*1024 {
		return
	}
	buf.Reset()
	BufferPool.Put(buf)
}

// EncodeXML encodes v as the element root, preceded by header and indented with indent.
// The returned slice is a copy and never aliases a pooled buffer.
func EncodeXML(v interface{}, root, header, indent string) ([]byte, error) {
	buf := GetBuffer()
	defer PutBuffer(buf)

	buf.WriteString(header)

	encoder := xml.NewEncoder(buf)
	if indent != "" {
		encoder.Indent("", indent)
	}
	if err := encoder.EncodeElement(v, xml.StartElement{Name: xml.Name{Local: root}}); err != nil {
		return nil, err
	}
	if err := encoder.Flush(); err != nil {
		return nil, err
	}

	result := make([]byte, buf.Len())
	copy(result, buf.Bytes())
	return result, nil
}
