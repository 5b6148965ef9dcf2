// Package platform classifies the host and describes what pyup can do on it.
//
// Detection is a pure function of a few OS signals so every branch can be
// exercised from fixtures:
//
//	p := platform.Detect(platform.Signals{
//		GOOS:      "linux",
//		OSRelease: "ID=ubuntu\n",
//	})
//	// p == platform.Ubuntu
//
// [DetectHost] gathers the real signals. Hosts that cannot be classified
// resolve to [Unknown]; detection never fails.
//
// Each variant has a [Strategy] describing whether it is supported, the
// install methods to offer in order of preference, the native build
// dependencies, and guidance text for the user. Callers dispatch on the
// Strategy instead of switching on the variant.
package platform
