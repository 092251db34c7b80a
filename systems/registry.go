package systems

// SystemInfo describes a game system for UI display.
type SystemInfo struct {
	ID          string // Internal identifier (used for perf tracking)
	Name        string // Display name
	Description string // What this system does
	Category    string // Grouping (e.g., "input", "movement", "spawn")
}

// System IDs in tick order.
const (
	IDPlayerInput      = "playerInput"
	IDPlayerFire       = "playerFire"
	IDVirusInput       = "virusInput"
	IDPlayerMovement   = "playerMovement"
	IDParticleMovement = "particleMovement"
	IDEnemyFire        = "enemyFire"
	IDExplosionFuse    = "explosionFuse"
	IDVirusFuse        = "virusFuse"
	IDSpawnParticle    = "spawnParticle"
	IDSpawnVirus       = "spawnVirus"
	IDSpawnExplosion   = "spawnExplosion"
	IDPickup           = "pickup"
	IDHostileContact   = "hostileContact"
	IDExpiry           = "expiry"
)

// SystemRegistry holds metadata about all systems.
// Registration order is the order the simulation runs them in, so the UI,
// the perf tracker and the schedule stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Producers of a signal must come before its consumer.
func (r *SystemRegistry) registerDefaults() {
	// Input
	r.Register(SystemInfo{ID: IDPlayerInput, Name: "Player Input", Description: "Sets player velocity from held keys", Category: "input"})
	r.Register(SystemInfo{ID: IDPlayerFire, Name: "Player Fire", Description: "Ejects a particle toward the cursor", Category: "input"})
	r.Register(SystemInfo{ID: IDVirusInput, Name: "Virus Input", Description: "Drops a virus at the player", Category: "input"})

	// Movement
	r.Register(SystemInfo{ID: IDPlayerMovement, Name: "Player Movement", Description: "Moves the player unless blocked by a wall", Category: "movement"})
	r.Register(SystemInfo{ID: IDParticleMovement, Name: "Particle Movement", Description: "Moves particles and bounces them off walls", Category: "movement"})

	// Timers
	r.Register(SystemInfo{ID: IDEnemyFire, Name: "Enemy Fire", Description: "Ticks enemy fire timers", Category: "timers"})
	r.Register(SystemInfo{ID: IDExplosionFuse, Name: "Explosion Fuse", Description: "Removes spent explosions", Category: "timers"})
	r.Register(SystemInfo{ID: IDVirusFuse, Name: "Virus Fuse", Description: "Detonates viruses", Category: "timers"})

	// Spawners
	r.Register(SystemInfo{ID: IDSpawnParticle, Name: "Spawn Particle", Description: "Consumes one eject signal", Category: "spawn"})
	r.Register(SystemInfo{ID: IDSpawnVirus, Name: "Spawn Virus", Description: "Consumes one drop signal", Category: "spawn"})
	r.Register(SystemInfo{ID: IDSpawnExplosion, Name: "Spawn Explosion", Description: "Consumes one explode signal", Category: "spawn"})

	// Collisions
	r.Register(SystemInfo{ID: IDPickup, Name: "Pickup", Description: "Transfers status effects to cells", Category: "collision"})
	r.Register(SystemInfo{ID: IDHostileContact, Name: "Hostile Contact", Description: "Damages cells touching hostiles", Category: "collision"})

	// Cleanup
	r.Register(SystemInfo{ID: IDExpiry, Name: "Expiry", Description: "Removes entities out of lifespan", Category: "core"})
}

// Register adds a system to the registry.
func (r *SystemRegistry) Register(info SystemInfo) {
	r.systems = append(r.systems, info)
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.byID[id]; ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}

// IDs returns all system IDs in registration order.
func (r *SystemRegistry) IDs() []string {
	ids := make([]string, len(r.systems))
	for i, info := range r.systems {
		ids[i] = info.ID
	}
	return ids
}
