package ssdp

import (
	"net/http"
	"strings"
	"testing"
)

func TestComposeSearchReply(t *testing.T) {
	reply := string(composeSearchReply(Headers{
		HeaderST:       "urn:dial-multiscreen-org:service:dial:1",
		HeaderUSN:      "uuid:abc::urn:dial-multiscreen-org:service:dial:1",
		HeaderLocation: "http://192.168.1.10:9200/ssdp/device-desc.xml",
	}))

	if !strings.HasPrefix(reply, "HTTP/1.1 200 OK\r\n") {
		t.Errorf("reply missing status line:\n%q", reply)
	}
	if !strings.HasSuffix(reply, "\r\n\r\n") {
		t.Errorf("reply missing terminating blank line:\n%q", reply)
	}
	if !strings.Contains(reply, "LOCATION: http://192.168.1.10:9200/ssdp/device-desc.xml\r\n") {
		t.Errorf("reply missing LOCATION header:\n%q", reply)
	}
	if !strings.Contains(reply, "ST: urn:dial-multiscreen-org:service:dial:1\r\n") {
		t.Errorf("reply missing ST header:\n%q", reply)
	}
}

func TestComposeSearchReplyDeterministic(t *testing.T) {
	h := Headers{"B": "2", "A": "1", "C": "3"}
	first := string(composeSearchReply(h))
	for i := 0; i < 10; i++ {
		if got := string(composeSearchReply(h)); got != first {
			t.Fatalf("composeSearchReply() not deterministic:\n%q\nvs\n%q", first, got)
		}
	}
}

func TestFlattenHeader(t *testing.T) {
	h := http.Header{}
	h.Set("Location", "http://example.test/desc.xml")
	h.Set("Usn", "uuid:abc")
	h.Add("X-Multi", "first")
	h.Add("X-Multi", "second")

	flat := flattenHeader(h)

	if flat["LOCATION"] != "http://example.test/desc.xml" {
		t.Errorf("LOCATION = %q", flat["LOCATION"])
	}
	if flat["USN"] != "uuid:abc" {
		t.Errorf("USN = %q", flat["USN"])
	}
	if flat["X-MULTI"] != "first" {
		t.Errorf("X-MULTI = %q, want first value", flat["X-MULTI"])
	}
}
