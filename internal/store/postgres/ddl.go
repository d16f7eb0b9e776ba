package postgres

// Schema holds the DDL for the reservation store.
//
// The exclusion constraint is the real no-double-booking guard: the
// availability engine's check-then-act is racy under concurrent writers,
// so overlapping confirmed rows must lose at commit time, not at check
// time. Requires the btree_gist extension for equality on resource_id
// inside a GiST index.
const Schema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS actors (
    actor_id     TEXT PRIMARY KEY,
    display_name TEXT NOT NULL,
    role         TEXT NOT NULL,
    member_tier  TEXT NOT NULL DEFAULT '',
    phone        TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS resources (
    resource_id TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    size_meters DOUBLE PRECISION NOT NULL,
    owner_id    TEXT NOT NULL REFERENCES actors(actor_id)
);

CREATE TABLE IF NOT EXISTS reservations (
    reservation_id TEXT PRIMARY KEY,
    resource_id    TEXT NOT NULL REFERENCES resources(resource_id),
    holder_id      TEXT NOT NULL REFERENCES actors(actor_id),
    start_time     TIMESTAMPTZ NOT NULL,
    end_time       TIMESTAMPTZ NOT NULL,
    status         TEXT NOT NULL,
    creation_time  TIMESTAMPTZ NOT NULL DEFAULT now(),
    CHECK (end_time > start_time),
    CONSTRAINT reservations_no_overlap EXCLUDE USING gist (
        resource_id WITH =,
        tstzrange(start_time, end_time, '[)') WITH &&
    ) WHERE (status = 'confirmed')
);

CREATE INDEX IF NOT EXISTS reservations_resource_status_idx
    ON reservations (resource_id, status);
`
