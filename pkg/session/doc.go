/*
Package session coordinates access to run checkpoints.

It serializes work on a run ID within the process and, when a distributed
locker is configured, across every process sharing the same checkpoint store.
*/
package session
