// Package k8sclient applies and deletes individual cluster objects.
//
// Objects are unstructured.Unstructured values. Apply uses Server-Side Apply
// with a fixed field manager and forced conflicts; Delete treats a missing
// object or an unknown kind as already deleted. Kinds are resolved to
// resources through a discovery-backed RESTMapper.
package k8sclient
