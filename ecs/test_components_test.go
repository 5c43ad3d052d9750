package ecs_test

// Common test component types
type Position struct {
	X, Y float64
}

type Velocity struct {
	DX, DY float64
}

type Name struct {
	Value string
}

type Health struct {
	Current int
	Max     int
}

type PlayerController struct{}

type AI struct {
	State int
}

// Custom primitive types for testing non-struct components
type Score int32
type Temperature float64

// Differently sized components for migration layout tests
type Small struct {
	V int32
}

type Wide struct {
	V float64
}
