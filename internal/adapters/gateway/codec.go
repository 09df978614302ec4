package gateway

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/kevin07696/ecommerce-client/pkg/encoding"
	"github.com/kevin07696/ecommerce-client/pkg/messages"
)

// XMLHeader prefixes every encoded body
const XMLHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const xmlIndent = "    "

// Encode serializes a request or response entity. The output is byte-for-byte
// deterministic for equal inputs, which the signature depends on.
func Encode(el messages.Element) ([]byte, error) {
	if el == nil {
		return nil, errors.New("nothing to encode")
	}
	body, err := encoding.EncodeXML(el, el.RootElement(), XMLHeader, xmlIndent)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", el.RootElement(), err)
	}
	return body, nil
}

// Decode parses data into out, which must be a pointer to a message type.
// The document root must match out's root element. Missing elements stay empty
// and unknown elements are ignored.
func Decode(data []byte, out messages.Element) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return fmt.Errorf("decode %s: empty document", out.RootElement())
		}
		if err != nil {
			return fmt.Errorf("decode %s: %w", out.RootElement(), err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local != out.RootElement() {
			return fmt.Errorf("decode %s: unexpected root element %q", out.RootElement(), start.Name.Local)
		}
		if err := dec.DecodeElement(out, &start); err != nil {
			return fmt.Errorf("decode %s: %w", out.RootElement(), err)
		}
		return nil
	}
}
