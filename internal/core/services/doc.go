// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services depend on ports and domain only. The orchestrator's response
// cache is the one third-party import.
package services
