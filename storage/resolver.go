package storage

import "context"

// ImageURLResolver резолвит ключи хранилища изображений (аватары игроков,
// баннеры турниров) в ссылки, пригодные для отображения. Загрузкой
// изображений владеет бекенд, портал только читает.
type ImageURLResolver interface {
	ResolveURL(ctx context.Context, key string) (string, error)
}
