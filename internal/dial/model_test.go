package dial

import (
	"testing"
)

func TestInferredState(t *testing.T) {
	tests := []struct {
		name string
		app  App
		want AppState
	}{
		{
			name: "explicit state wins over pid",
			app:  App{Name: "YouTube", State: AppStarting, Pid: "42"},
			want: AppStarting,
		},
		{
			name: "pid present infers running",
			app:  App{Name: "YouTube", Pid: "42"},
			want: AppRunning,
		},
		{
			name: "no state no pid infers stopped",
			app:  App{Name: "YouTube"},
			want: AppStopped,
		},
		{
			name: "explicit stopped stays stopped",
			app:  App{Name: "YouTube", State: AppStopped},
			want: AppStopped,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.app.InferredState(); got != tt.want {
				t.Errorf("InferredState() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestServiceTypes(t *testing.T) {
	types := ServiceTypes("abc")
	if len(types) != 5 {
		t.Fatalf("ServiceTypes() returned %d types, want 5", len(types))
	}

	want := []string{
		"urn:dial-multiscreen-org:service:dial:1",
		"urn:dial-multiscreen-org:device:dial:1",
		"upnp:rootdevice",
		"ssdp:all",
		"uuid:abc",
	}
	for i, st := range want {
		if types[i] != st {
			t.Errorf("ServiceTypes()[%d] = %q, want %q", i, types[i], st)
		}
	}
}

func TestUSN(t *testing.T) {
	got := USN("abc", RootDevice)
	if got != "uuid:abc::upnp:rootdevice" {
		t.Errorf("USN() = %q, want %q", got, "uuid:abc::upnp:rootdevice")
	}
}

func TestAdvertisementsShareIdentity(t *testing.T) {
	dev := Device{UUID: "abc", DescriptionURL: "http://192.168.1.10:9200/ssdp/device-desc.xml"}
	ads := Advertisements(dev, "test-server/1.0", map[string]string{"X-Extra": "1"})

	if len(ads) != 5 {
		t.Fatalf("Advertisements() returned %d entries, want 5", len(ads))
	}
	for _, ad := range ads {
		if ad.Location != dev.DescriptionURL {
			t.Errorf("advertisement %q location = %q, want device location", ad.Type, ad.Location)
		}
		if ad.USN != USN("abc", ad.Type) {
			t.Errorf("advertisement %q USN = %q", ad.Type, ad.USN)
		}
		if ad.Extra["X-Extra"] != "1" {
			t.Errorf("advertisement %q lost extra headers", ad.Type)
		}
	}
}

func TestMergeHeaders(t *testing.T) {
	tests := []struct {
		name     string
		base     map[string]string
		defaults map[string]string
		want     map[string]string
	}{
		{
			name:     "existing value wins",
			base:     map[string]string{"SERVER": "custom"},
			defaults: map[string]string{"SERVER": "default", "NT": "upnp:rootdevice"},
			want:     map[string]string{"SERVER": "custom", "NT": "upnp:rootdevice"},
		},
		{
			name:     "nil base takes all defaults",
			base:     nil,
			defaults: map[string]string{"NT": "upnp:rootdevice"},
			want:     map[string]string{"NT": "upnp:rootdevice"},
		},
		{
			name:     "nil defaults keeps base",
			base:     map[string]string{"NT": "upnp:rootdevice"},
			defaults: nil,
			want:     map[string]string{"NT": "upnp:rootdevice"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeHeaders(tt.base, tt.defaults)
			if len(got) != len(tt.want) {
				t.Fatalf("MergeHeaders() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("MergeHeaders()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestMergeHeadersDoesNotMutateInputs(t *testing.T) {
	base := map[string]string{"A": "1"}
	defaults := map[string]string{"B": "2"}
	MergeHeaders(base, defaults)
	if len(base) != 1 || len(defaults) != 1 {
		t.Error("MergeHeaders() mutated an input map")
	}
}
