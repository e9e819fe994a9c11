package quiz

import "testing"

func TestDeviceTypeFromUserAgent(t *testing.T) {
	cases := map[string]DeviceType{
		"":                                                        DeviceDesktop,
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64)":               DeviceDesktop,
		"Mozilla/5.0 (Linux; Android 14) Mobile Safari/537.36":    DeviceMobile,
		"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X) Mobile/15": DeviceMobile,
		"Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)":           DeviceDesktop,
		"curl/8.4.0":                                              DeviceDesktop,
	}
	for ua, want := range cases {
		if got := DeviceTypeFromUserAgent(ua); got != want {
			t.Fatalf("DeviceTypeFromUserAgent(%q) = %s, want %s", ua, got, want)
		}
	}
}
