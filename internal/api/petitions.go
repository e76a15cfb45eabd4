package api

import (
	"context"
	"fmt"
	"net/url"

	"jroconnect/internal/logger"
	"jroconnect/pkg/types"

	"github.com/go-viper/mapstructure/v2"
)

// maxPages 跟随分页 next 链接的最大页数
const maxPages = 50

// Petitions 获取 petitions/ 列表，分页响应会沿 next 链接读取全部页面
func (c *Client) Petitions(ctx context.Context) ([]types.Petition, error) {
	const endpoint = "petitions/"

	var (
		all    []types.Petition
		reqURL = c.URL(endpoint)
	)
	for page := 0; page < maxPages; page++ {
		res := c.get(ctx, endpoint, reqURL)
		if res.Err != nil {
			return nil, res.Err
		}

		items, next, err := splitPage(res.Value)
		if err != nil {
			return nil, fmt.Errorf("解析请愿列表失败: %w", err)
		}

		var petitions []types.Petition
		if err := decode(items, &petitions); err != nil {
			return nil, fmt.Errorf("解析请愿列表失败: %w", err)
		}
		all = append(all, petitions...)

		if next == "" {
			return all, nil
		}
		if reqURL, err = resolveURL(reqURL, next); err != nil {
			return nil, fmt.Errorf("解析分页地址失败: %w", err)
		}
	}

	logger.Warnf("请愿列表超过 %d 页，只读取前 %d 页", maxPages, maxPages)
	return all, nil
}

// splitPage 拆分列表响应：普通数组，或 {"count": n, "next": url, "results": [...]} 分页结构
func splitPage(value any) ([]any, string, error) {
	switch v := value.(type) {
	case []any:
		return v, "", nil
	case map[string]any:
		items, ok := v["results"].([]any)
		if !ok {
			return nil, "", ErrEmptyResult
		}
		next, _ := v["next"].(string)
		return items, next, nil
	default:
		return nil, "", ErrEmptyResult
	}
}

// resolveURL 将 next 链接解析为完整地址，相对地址基于当前请求地址
func resolveURL(current, next string) (string, error) {
	base, err := url.Parse(current)
	if err != nil {
		return "", err
	}
	ref, err := url.Parse(next)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// Petition 获取 petitions/{id}/ 详情
func (c *Client) Petition(ctx context.Context, id int) (*types.Petition, error) {
	res := c.Fetch(ctx, fmt.Sprintf("petitions/%d/", id))
	if res.Err != nil {
		return nil, res.Err
	}

	if _, ok := res.Value.(map[string]any); !ok {
		return nil, fmt.Errorf("解析请愿 %d 失败: %w", id, ErrEmptyResult)
	}

	var petition types.Petition
	if err := decode(res.Value, &petition); err != nil {
		return nil, fmt.Errorf("解析请愿 %d 失败: %w", id, err)
	}
	return &petition, nil
}

// decode 将 JSON 解码得到的通用结构转换为具体类型（JSON 数字为 float64，需要 WeaklyTypedInput）
func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}
