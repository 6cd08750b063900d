package scene

// FrameSynchronizer mirrors simulated poses onto render proxies. It runs once
// per frame after the physics step and before render. The scripted actor
// writes its own proxy in Update.
type FrameSynchronizer struct {
	Pool *ObjectPool
}

func (s *FrameSynchronizer) Sync() {
	if s.Pool != nil {
		s.Pool.SyncAll()
	}
}
