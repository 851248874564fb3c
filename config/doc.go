// Package config loads the signgate service configuration.
//
// Configuration is read from an optional YAML file, then selected fields are
// overridden from SIGNGATE_* environment variables:
//
//	listen: 127.0.0.1:6191
//	admin_listen: 127.0.0.1:9091
//	max_body_bytes: 1048576
//	secret_file: /run/secrets/signgate
//	log:
//	  level: info
//	  format: json
//	  file:
//	    path: /var/log/signgate/signgate.log
//	    max_size_mb: 100
//
// The signing secret is never stored in the file itself; it is read from
// SecretFile or from the environment variable named by SecretEnv.
package config
