// Package manifests renders the cluster resources of the Argo Rollouts
// controller.
//
// Templates are multi-document YAML files executed with text/template and the
// sprig function map. They see two values, {{ .namespace }} and
// {{ .app_name }}; any other key fails the render. [Render] exposes the
// result as a lazy iter.Seq2 of [Resource] values backed by
// unstructured.Unstructured, so appliers can stop on the first failure
// without rendering the rest.
package manifests
