package ws

func (manager *WebSocketManager) IsUserConnected(userID string) bool {
	return manager.isUserConnected(userID)
}
