package service

import "sync"

// inflightGuard запрещает повторную отправку денежной операции, пока предыдущая
// операция того же юзера еще не завершилась. Дедупликация здесь не нужна: вторая
// операция должна быть отклонена, а не склеена с первой.
type inflightGuard struct {
	mu    sync.Mutex
	users map[int64]struct{}
}

func newInflightGuard() *inflightGuard {
	return &inflightGuard{users: make(map[int64]struct{})}
}

func (g *inflightGuard) tryAcquire(userID int64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, busy := g.users[userID]; busy {
		return false
	}
	g.users[userID] = struct{}{}
	return true
}

func (g *inflightGuard) release(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.users, userID)
}
