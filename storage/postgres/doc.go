// Package postgres implements the gateway's persistence over pgx: stored
// ban lists, tenant validator configurations, and the request/validator
// audit logs. All tenant-owned rows are read and written with explicit
// (organization, project) scoping; nothing in this package trusts a row id
// alone.
package postgres
