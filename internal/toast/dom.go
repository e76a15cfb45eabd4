package toast

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"jroconnect/pkg/types"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContainerID 页面中提示容器的默认 id
const ContainerID = "toasts"

// DOMContainer 基于 HTML 节点树的提示容器
type DOMContainer struct {
	mu    sync.Mutex
	root  *html.Node
	nodes map[string]*html.Node
}

// NewDOMContainer 使用已有的容器节点创建 DOMContainer
func NewDOMContainer(node *html.Node) (*DOMContainer, error) {
	if node == nil || node.Type != html.ElementNode {
		return nil, ErrContainerNotFound
	}
	return &DOMContainer{
		root:  node,
		nodes: make(map[string]*html.Node),
	}, nil
}

// ParseDocument 解析 HTML 文档并查找 id 为 containerID 的容器
func ParseDocument(r io.Reader, containerID string) (*DOMContainer, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("解析页面失败: %w", err)
	}
	return FindContainer(doc, containerID)
}

// FindContainer 在文档中查找 id 为 containerID 的元素
func FindContainer(doc *html.Node, containerID string) (*DOMContainer, error) {
	return NewDOMContainer(findByID(doc, containerID))
}

func findByID(n *html.Node, id string) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				return n
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findByID(c, id); found != nil {
			return found
		}
	}
	return nil
}

// Append 添加 <div class="toast"> 元素，消息作为文本节点写入
func (c *DOMContainer) Append(t *types.Toast) error {
	if c == nil {
		return ErrContainerNotFound
	}
	el := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Div,
		Data:     "div",
		Attr: []html.Attribute{
			{Key: "class", Val: ClassName},
			{Key: "data-toast-id", Val: t.ID},
		},
	}
	el.AppendChild(&html.Node{Type: html.TextNode, Data: t.Message})

	c.mu.Lock()
	defer c.mu.Unlock()
	c.root.AppendChild(el)
	c.nodes[t.ID] = el
	return nil
}

// Remove 移除提示元素
func (c *DOMContainer) Remove(t *types.Toast) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.nodes[t.ID]
	if !ok {
		return
	}
	if el.Parent != nil {
		el.Parent.RemoveChild(el)
	}
	delete(c.nodes, t.ID)
}

// Len 返回容器中当前的提示数量
func (c *DOMContainer) Len() int {
	return len(c.Messages())
}

// Messages 按显示顺序返回容器中提示的文本
func (c *DOMContainer) Messages() []string {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	var out []string
	for n := c.root.FirstChild; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode || !hasClass(n, ClassName) {
			continue
		}
		var sb strings.Builder
		for tc := n.FirstChild; tc != nil; tc = tc.NextSibling {
			if tc.Type == html.TextNode {
				sb.WriteString(tc.Data)
			}
		}
		out = append(out, sb.String())
	}
	return out
}

// Render 输出容器的 HTML
func (c *DOMContainer) Render(w io.Writer) error {
	if c == nil {
		return ErrContainerNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return html.Render(w, c.root)
}

func hasClass(n *html.Node, class string) bool {
	for _, a := range n.Attr {
		if a.Key == "class" {
			for _, f := range strings.Fields(a.Val) {
				if f == class {
					return true
				}
			}
		}
	}
	return false
}
