// package models defines the data model for the music streaming service.
//
// Tracks are sourced from the external catalog and never owned by this
// system; playlists, library entries and playlist memberships are persisted
// locally as denormalized copies of the track fields the app consumes.
package models
