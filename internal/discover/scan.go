package discover

import (
	"time"

	"github.com/dialproto/godial/internal/ssdp"
)

// ScanOnce performs a one-shot discovery sweep over UDP multicast. It opens
// a transport, searches for the default DIAL targets, collects
// advertisements for the given window, and returns the resulting records.
func ScanOnce(window time.Duration) ([]Record, error) {
	transport := ssdp.NewGoSSDP(ssdp.GoSSDPConfig{})

	client, err := New(Options{Transport: transport})
	if err != nil {
		return nil, err
	}
	if err := client.Start(); err != nil {
		return nil, err
	}
	defer client.Stop()

	// Let search responses and unsolicited notifications accumulate
	time.Sleep(window)

	return client.Records(), nil
}
