// Package monitor lists the processes running inside a simulator.
//
// Every "is X running" check in the system goes through Provider.PS, which
// spawns `launchctl print system` in the device and parses its services table.
package monitor
