// Package config provides PostgreSQL connection configuration for the integration tests and the seed command.
// The DSNs are read from ENTITYCOLLECTION_POSTGRES_DSN and ENTITYCOLLECTION_POSTGRES_REPLICA_DSN.
package config
