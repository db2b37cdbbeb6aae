package controller

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/dialproto/godial/internal/description"
	"github.com/dialproto/godial/internal/dial"
	"github.com/dialproto/godial/internal/logging"
)

// DefaultContentType is used for launch payloads when the caller supplies
// none.
const DefaultContentType = `text/plain; charset="utf-8"`

// applicationURLHeader carries the app-control base URL on description
// responses.
const applicationURLHeader = "Application-URL"

// RemoteDevice is a discovered receiver ready for app control. It is an
// immutable value built from one description fetch; it holds no subscription
// to later advertisement changes.
type RemoteDevice struct {
	// Device is the parsed identity, with DescriptionURL and
	// ApplicationURL filled from the fetch.
	Device dial.Device

	client *http.Client
}

// FetchDevice fetches and parses the description document at location and
// builds a RemoteDevice from it. The app-control base URL comes from the
// response's Application-URL header, normalized without a trailing slash.
func FetchDevice(ctx context.Context, location string) (*RemoteDevice, error) {
	return fetchDevice(ctx, location, http.DefaultClient)
}

func fetchDevice(ctx context.Context, location string, client *http.Client) (*RemoteDevice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, NewTransportError(location, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewTransportError(location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, NewRemoteError(location, resp.StatusCode, "Description fetch failed")
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(location, err)
	}

	device, err := description.ParseDeviceDescription(string(body))
	if err != nil {
		return nil, NewParseError(location, err)
	}
	device.DescriptionURL = location
	device.ApplicationURL = dial.StripTrailingSlash(resp.Header.Get(applicationURLHeader))

	logging.Info("Receiver description fetched",
		zap.String("location", location),
		zap.String("friendly_name", device.FriendlyName),
		zap.String("application_url", device.ApplicationURL),
	)
	return &RemoteDevice{Device: device, client: client}, nil
}

// FetchAppInfo queries the current state of the named app. A non-success
// status yields a remote error carrying it; a malformed body yields a parse
// error.
func (d *RemoteDevice) FetchAppInfo(ctx context.Context, name string) (*dial.App, error) {
	target := d.appURL(name)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, NewTransportError(target, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, NewTransportError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, NewRemoteError(target, resp.StatusCode,
			fmt.Sprintf("App info query for %q failed", name))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, NewTransportError(target, err)
	}

	app, err := description.ParseAppDescription(string(body))
	if err != nil {
		return nil, NewParseError(target, err)
	}
	return &app, nil
}

// Launch starts the named app with the given payload. When contentType is
// empty, DefaultContentType is used. The content length is the payload's
// byte length, which differs from its character count for multi-byte text.
// A status below 400 yields the instance URL from the Location response
// header (empty when the receiver sends none); 400 and above yields a remote
// error carrying the status.
func (d *RemoteDevice) Launch(ctx context.Context, name, payload, contentType string) (string, error) {
	target := d.appURL(name)
	if contentType == "" {
		contentType = DefaultContentType
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, strings.NewReader(payload))
	if err != nil {
		return "", NewTransportError(target, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = int64(len(payload))

	resp, err := d.client.Do(req)
	if err != nil {
		return "", NewTransportError(target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", NewRemoteError(target, resp.StatusCode,
			fmt.Sprintf("Launch of %q rejected", name))
	}

	instance := resp.Header.Get("Location")
	logging.Info("App launched",
		zap.String("app", name),
		zap.Int("status", resp.StatusCode),
		zap.String("instance", instance),
	)
	return instance, nil
}

// InstancePid extracts the stop token from an instance URL returned by
// Launch. An empty URL yields an empty token.
func InstancePid(instanceURL string) string {
	if instanceURL == "" {
		return ""
	}
	return path.Base(instanceURL)
}

// Stop issues a delete for one launched instance and returns the receiver's
// status verbatim; interpreting 200 versus anything else is the caller's
// business.
func (d *RemoteDevice) Stop(ctx context.Context, name, pid string) (int, error) {
	target := d.appURL(name) + "/" + pid

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, target, nil)
	if err != nil {
		return 0, NewTransportError(target, err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, NewTransportError(target, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	logging.Info("App stop requested",
		zap.String("app", name),
		zap.String("pid", pid),
		zap.Int("status", resp.StatusCode),
	)
	return resp.StatusCode, nil
}

func (d *RemoteDevice) appURL(name string) string {
	return d.Device.ApplicationURL + "/" + name
}
