package description

import (
	"strings"
	"testing"

	"github.com/dialproto/godial/internal/dial"
)

func TestDeviceDescriptionRoundTrip(t *testing.T) {
	dev := dial.Device{
		UUID:         "abc",
		FriendlyName: "R",
		Manufacturer: "M",
		ModelName:    "X",
	}

	text, err := RenderDeviceDescription(dev)
	if err != nil {
		t.Fatalf("RenderDeviceDescription() error = %v", err)
	}

	parsed, err := ParseDeviceDescription(text)
	if err != nil {
		t.Fatalf("ParseDeviceDescription() error = %v", err)
	}

	if parsed.UUID != dev.UUID {
		t.Errorf("UUID = %q, want %q", parsed.UUID, dev.UUID)
	}
	if parsed.FriendlyName != dev.FriendlyName {
		t.Errorf("FriendlyName = %q, want %q", parsed.FriendlyName, dev.FriendlyName)
	}
	if parsed.Manufacturer != dev.Manufacturer {
		t.Errorf("Manufacturer = %q, want %q", parsed.Manufacturer, dev.Manufacturer)
	}
	if parsed.ModelName != dev.ModelName {
		t.Errorf("ModelName = %q, want %q", parsed.ModelName, dev.ModelName)
	}
}

func TestRenderDeviceDescriptionSchema(t *testing.T) {
	dev := dial.Device{
		UUID:         "0ee20f4a",
		FriendlyName: "Living Room TV",
		Manufacturer: "Acme",
		ModelName:    "Screen 9000",
		Icons: []dial.Icon{
			{MimeType: "image/png", Width: 98, Height: 55, Depth: 32, URL: "/icon.png"},
			{MimeType: "image/jpeg", Width: 10, Height: 10, Depth: 8, URL: "/tiny.jpg"},
		},
	}

	text, err := RenderDeviceDescription(dev)
	if err != nil {
		t.Fatalf("RenderDeviceDescription() error = %v", err)
	}

	for _, want := range []string{
		"<deviceType>urn:dial-multiscreen-org:device:dial:1</deviceType>",
		"<UDN>uuid:0ee20f4a</UDN>",
		"<friendlyName>Living Room TV</friendlyName>",
		"<serviceType>urn:dial-multiscreen-org:service:dial:1</serviceType>",
		"<controlURL>/ssdp/notfound</controlURL>",
		"<mimetype>image/png</mimetype>",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("device description missing %q:\n%s", want, text)
		}
	}

	// Only the first icon is rendered.
	if strings.Contains(text, "tiny.jpg") {
		t.Errorf("device description rendered more than one icon:\n%s", text)
	}
}

func TestParseDeviceDescriptionMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "not XML", text: "this is not a document"},
		{name: "truncated", text: "<?xml version=\"1.0\"?><root><device><UDN>uuid:x"},
		{name: "empty", text: ""},
		{name: "wrong shape", text: "<?xml version=\"1.0\"?><root></root>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseDeviceDescription(tt.text); err == nil {
				t.Error("ParseDeviceDescription() expected error, got nil")
			}
		})
	}
}

func TestAppDescriptionRoundTrip(t *testing.T) {
	app := dial.App{
		Name:      "YouTube",
		Pid:       "run-7",
		AllowStop: true,
		AdditionalData: map[string]string{
			"screenId":  "abc123",
			"sessionId": "9",
		},
		Namespaces: map[string]string{
			"yt": "urn:youtube-com:schemas:extra",
		},
	}

	text, err := RenderAppDescription(app)
	if err != nil {
		t.Fatalf("RenderAppDescription() error = %v", err)
	}

	parsed, err := ParseAppDescription(text)
	if err != nil {
		t.Fatalf("ParseAppDescription() error = %v", err)
	}

	if parsed.Name != app.Name {
		t.Errorf("Name = %q, want %q", parsed.Name, app.Name)
	}
	if parsed.Pid != app.Pid {
		t.Errorf("Pid = %q, want %q", parsed.Pid, app.Pid)
	}
	if !parsed.AllowStop {
		t.Error("AllowStop = false, want true")
	}
	if parsed.InferredState() != dial.AppRunning {
		t.Errorf("state = %q, want running", parsed.InferredState())
	}
	if parsed.AdditionalData["screenId"] != "abc123" {
		t.Errorf("AdditionalData[screenId] = %q, want abc123", parsed.AdditionalData["screenId"])
	}
	if parsed.Namespaces["yt"] != "urn:youtube-com:schemas:extra" {
		t.Errorf("Namespaces[yt] = %q", parsed.Namespaces["yt"])
	}
}

func TestRenderAppDescriptionLinkOnlyWithPid(t *testing.T) {
	stopped := dial.App{Name: "YouTube"}
	text, err := RenderAppDescription(stopped)
	if err != nil {
		t.Fatalf("RenderAppDescription() error = %v", err)
	}
	if strings.Contains(text, "<link") {
		t.Errorf("stopped app rendered a <link> element:\n%s", text)
	}
	if !strings.Contains(text, "<state>stopped</state>") {
		t.Errorf("stopped app missing inferred state:\n%s", text)
	}
	if !strings.Contains(text, `allowStop="false"`) {
		t.Errorf("app missing allowStop attribute:\n%s", text)
	}

	running := dial.App{Name: "YouTube", Pid: "42"}
	text, err = RenderAppDescription(running)
	if err != nil {
		t.Fatalf("RenderAppDescription() error = %v", err)
	}
	if !strings.Contains(text, `rel="run"`) || !strings.Contains(text, `href="42"`) {
		t.Errorf("running app missing link element:\n%s", text)
	}
	if !strings.Contains(text, "<state>running</state>") {
		t.Errorf("running app missing inferred state:\n%s", text)
	}
}

func TestParseAppDescriptionStripsNamespacePrefixes(t *testing.T) {
	// A prefixed document must parse identically to an unprefixed one.
	prefixed := `<?xml version="1.0" encoding="UTF-8"?>
<dial:service xmlns:dial="urn:dial-multiscreen-org:schemas:dial">
  <dial:name>Netflix</dial:name>
  <dial:options dial:allowStop="true"/>
  <dial:state>running</dial:state>
  <dial:link dial:rel="run" dial:href="17"/>
  <dial:additionalData>
    <dial:clientId>xyz</dial:clientId>
  </dial:additionalData>
</dial:service>`

	app, err := ParseAppDescription(prefixed)
	if err != nil {
		t.Fatalf("ParseAppDescription() error = %v", err)
	}

	if app.Name != "Netflix" {
		t.Errorf("Name = %q, want Netflix", app.Name)
	}
	if app.State != dial.AppRunning {
		t.Errorf("State = %q, want running", app.State)
	}
	if app.Pid != "17" {
		t.Errorf("Pid = %q, want 17", app.Pid)
	}
	if !app.AllowStop {
		t.Error("AllowStop = false, want true")
	}
	if app.AdditionalData["clientId"] != "xyz" {
		t.Errorf("AdditionalData[clientId] = %q, want xyz", app.AdditionalData["clientId"])
	}
}

func TestParseAppDescriptionIgnoresNonRunLink(t *testing.T) {
	text := `<?xml version="1.0"?>
<service xmlns="urn:dial-multiscreen-org:schemas:dial">
  <name>X</name>
  <options allowStop="false"/>
  <state>stopped</state>
  <link rel="describedby" href="whatever"/>
</service>`

	app, err := ParseAppDescription(text)
	if err != nil {
		t.Fatalf("ParseAppDescription() error = %v", err)
	}
	if app.Pid != "" {
		t.Errorf("Pid = %q, want empty for non-run link", app.Pid)
	}
}

func TestParseAppDescriptionMalformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty", text: ""},
		{name: "wrong root", text: "<device><name>X</name></device>"},
		{name: "truncated", text: "<service><name>X"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAppDescription(tt.text); err == nil {
				t.Error("ParseAppDescription() expected error, got nil")
			}
		})
	}
}
