// Package testing provides shared fakes and helpers for unit tests.
//
// The fakes record every call so tests can assert on side effects:
//   - FakeSupervisor: an in-memory process supervisor with a plan, layers,
//     service state and an optional number of unreachable calls
//   - FakeClusterClient: a cluster client that fails on the Nth apply
//   - FakeUnit: records status, workload version and opened ports
//   - MockVersionSource: testify mock for the version probe
//
// Usage:
//
//	sup := testing.NewFakeSupervisor().Unreachable(1)
//	unit := testing.NewFakeUnit()
//	cluster := testing.NewFakeClusterClient().FailOnApply(3, err)
package testing
