// Package config defines the operator's settings.
//
// A [Config] starts from [Default], is optionally overlaid with a YAML file
// via [LoadFile], and finally with ARGO_ROLLOUTS_* environment variables via
// [Config.ApplyEnv]. [Load] performs all three steps and validates the
// result. The defaults match the sidecar charm layout: a workload container
// named argo-rollouts with its Pebble socket under /charm/containers.
package config
