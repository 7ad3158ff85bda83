package assets

import (
	"context"
	"math"
	"strconv"
)

// LinkError 过期时间参数不合法，对应 400
type LinkError struct {
	Message string
}

func (e *LinkError) Error() string {
	return e.Message
}

// IssuedLink 签发的过期链接
type IssuedLink struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// ParseExpiry 解析以分钟为单位的有效期
func ParseExpiry(raw string) (int, error) {
	if raw == "" {
		return 0, &LinkError{Message: "Expiring time must be provided."}
	}
	for _, r := range raw {
		if r < '0' || r > '9' {
			return 0, &LinkError{Message: "Expiring time must be of type int."}
		}
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes > math.MaxInt32 {
		minutes = math.MaxInt32
	}
	if minutes < 1 {
		return 0, &LinkError{Message: "Given expiring time must be positive."}
	}
	return minutes, nil
}

// ImageLink 为原图签发过期链接，先确认所有权再校验时间
func (s *Service) ImageLink(ctx context.Context, id, userID uint, rawTime, host string) (*IssuedLink, error) {
	img, err := s.images.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(img.Path, rawTime, host)
}

// ResizedLink 为缩放图签发过期链接
func (s *Service) ResizedLink(ctx context.Context, id, userID uint, rawTime, host string) (*IssuedLink, error) {
	resized, err := s.resized.GetByIDAndUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	return s.issue(resized.Path, rawTime, host)
}

func (s *Service) issue(path, rawTime, host string) (*IssuedLink, error) {
	minutes, err := ParseExpiry(rawTime)
	if err != nil {
		return nil, err
	}
	encoded := s.links.Encode(s.prefix+path, minutes, s.now())
	return &IssuedLink{
		URL:       s.links.Link(host, encoded),
		ExpiresIn: minutes,
	}, nil
}

// ResolveLink 解析过期链接路径，返回重定向目标
func (s *Service) ResolveLink(path string) (string, error) {
	return s.links.Decode(path, s.now())
}
