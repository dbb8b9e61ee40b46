package world

import "sync"

// Entity pools. Worlds churn through projectiles at a high rate during
// fights; snapshot reconciliation additionally rebuilds entity sets every
// server tick on clients.
var (
	projectilePool = sync.Pool{New: func() interface{} { return &Projectile{} }}
	laserPool      = sync.Pool{New: func() interface{} { return &Laser{} }}
	pickupPool     = sync.Pool{New: func() interface{} { return &Pickup{} }}
)

// AcquireProjectile returns a zeroed projectile from the pool.
func AcquireProjectile() *Projectile {
	p := projectilePool.Get().(*Projectile)
	ev := p.Events[:0]
	*p = Projectile{}
	p.Events = ev
	return p
}

// ReleaseProjectile hands a projectile back to the pool.
func ReleaseProjectile(p *Projectile) {
	projectilePool.Put(p)
}

// AcquireLaser returns a zeroed laser from the pool.
func AcquireLaser() *Laser {
	l := laserPool.Get().(*Laser)
	ev := l.Events[:0]
	*l = Laser{}
	l.Events = ev
	return l
}

// ReleaseLaser hands a laser back to the pool.
func ReleaseLaser(l *Laser) {
	laserPool.Put(l)
}

// AcquirePickup returns a zeroed pickup from the pool.
func AcquirePickup() *Pickup {
	p := pickupPool.Get().(*Pickup)
	ev := p.Events[:0]
	*p = Pickup{}
	p.Events = ev
	return p
}

// ReleasePickup hands a pickup back to the pool.
func ReleasePickup(p *Pickup) {
	pickupPool.Put(p)
}
