/*
Package session serializes access to conversation states.

Every session owns its own domain.State, so sessions never share variables.
The Manager only guarantees that two turns of the same session are not
processed at once, in this process (a reference-counted mutex per ID) and,
when a ports.DistributedLocker is configured, across replicas.
*/
package session
