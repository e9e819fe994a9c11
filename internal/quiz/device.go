package quiz

import "strings"

// DeviceTypeFromUserAgent: "Mobile" anywhere in the user agent means mobile,
// anything else desktop. DeviceTablet is never returned.
func DeviceTypeFromUserAgent(ua string) DeviceType {
	if strings.Contains(ua, "Mobile") {
		return DeviceMobile
	}
	return DeviceDesktop
}
