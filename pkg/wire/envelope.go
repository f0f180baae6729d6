package wire

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
)

// SOAP envelope constants.
const (
	envelopeNS    = "http://schemas.xmlsoap.org/soap/envelope/"
	encodingStyle = "http://schemas.xmlsoap.org/soap/encoding/"
)

// Envelope errors.
var (
	ErrNotEnvelope       = errors.New("response is not a SOAP envelope")
	ErrUndecodableFault  = errors.New("fault body carries no UPnPError detail")
	ErrMissingActionBody = errors.New("envelope body carries no action response")
)

// EncodeActionRequest builds the SOAP request envelope for one action.
// Argument values are XML-escaped; argument order is preserved.
func EncodeActionRequest(serviceType, action string, args []Arg) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	fmt.Fprintf(&buf, `<s:Envelope xmlns:s=%q s:encodingStyle=%q>`, envelopeNS, encodingStyle)
	buf.WriteString("<s:Body>")
	fmt.Fprintf(&buf, `<u:%s xmlns:u=%q>`, action, serviceType)
	for _, arg := range args {
		fmt.Fprintf(&buf, "<%s>", arg.Name)
		if err := xml.EscapeText(&buf, []byte(arg.Value)); err != nil {
			return nil, fmt.Errorf("escape argument %s: %w", arg.Name, err)
		}
		fmt.Fprintf(&buf, "</%s>", arg.Name)
	}
	fmt.Fprintf(&buf, "</u:%s>", action)
	buf.WriteString("</s:Body></s:Envelope>")
	return buf.Bytes(), nil
}

// envelope is the decode-side shape of a SOAP response. The body is kept
// as raw inner XML so the action element can be unmarshaled into a typed
// payload after the fault check.
type envelope struct {
	XMLName xml.Name `xml:"Envelope"`
	Body    struct {
		Fault *soapFault `xml:"Fault"`
		Inner []byte     `xml:",innerxml"`
	} `xml:"Body"`
}

// soapFault is the generic SOAP fault wrapper. UPnP gateways put the
// interesting part in the UPnPError detail element.
type soapFault struct {
	FaultCode   string `xml:"faultcode"`
	FaultString string `xml:"faultstring"`
	Detail      struct {
		UPnPError *upnpError `xml:"UPnPError"`
	} `xml:"detail"`
}

type upnpError struct {
	Code        int    `xml:"errorCode"`
	Description string `xml:"errorDescription"`
}

// DecodeActionResponse parses a SOAP response envelope into either a
// typed success payload T or a Fault. Unknown sibling elements in the
// payload are ignored, so partial or over-chatty responses still decode.
func DecodeActionResponse[T any](data []byte) (*T, *Fault, error) {
	var env envelope
	if err := xml.Unmarshal(data, &env); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrNotEnvelope, err)
	}

	if f := env.Body.Fault; f != nil {
		if ue := f.Detail.UPnPError; ue != nil {
			return nil, &Fault{Code: ue.Code, Description: ue.Description}, nil
		}
		return nil, nil, fmt.Errorf("%w: %s (%s)", ErrUndecodableFault, f.FaultString, f.FaultCode)
	}

	if len(bytes.TrimSpace(env.Body.Inner)) == 0 {
		return nil, nil, ErrMissingActionBody
	}

	var out T
	if err := xml.Unmarshal(env.Body.Inner, &out); err != nil {
		return nil, nil, fmt.Errorf("decode action response: %w", err)
	}
	return &out, nil, nil
}
