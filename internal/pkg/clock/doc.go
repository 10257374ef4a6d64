// Package clock lets code read "now" through an interface. Production wiring
// uses TimeClocker; tests pin time with Manual so TOTP windows are
// deterministic.
package clock
