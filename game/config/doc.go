// Package config loads the world configuration file.
//
// The world file is a single JSON document declaring global defaults (dog
// speed, bag capacity, retirement time), the loot generator settings and the
// maps with their roads, buildings, offices and loot types. Any structural
// problem is reported as ErrInvalidConfig and is fatal at startup.
package config
