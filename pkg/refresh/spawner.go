package refresh

// Spawner starts the background refresh without waiting for it
type Spawner interface {
	SpawnBackgroundRefresh(args []string) error
}
