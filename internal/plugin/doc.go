// SPDX-License-Identifier: MPL-2.0

// Package plugin installs and enrolls the c3po plugin inside the
// container: marketplace add/update, plugin install/update, enrollment
// against the coordinator, and stamping the machine name into the plugin
// credentials file.
package plugin
