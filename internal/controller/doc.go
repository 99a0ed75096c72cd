// Package controller provides the built-in match controllers and the
// registry that builds controllers from declarative specs.
package controller
