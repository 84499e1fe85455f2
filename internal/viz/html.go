package viz

import (
	"bytes"
	"fmt"
	"html/template"
)

// compiledTemplate is parsed at init time to fail fast on template errors.
var compiledTemplate = template.Must(template.New("viz").Parse(htmlTemplate))

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// GenerateHTML generates a self-contained HTML page for the graph.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	if err := validateLayout(opts.Layout); err != nil {
		return "", err
	}

	title := graph.Title
	if title == "" {
		title = "Citation graph"
	}

	if graph.IsEmpty() {
		var buf bytes.Buffer
		if err := compiledTemplate.ExecuteTemplate(&buf, "empty", templateData{Title: title}); err != nil {
			return "", err
		}
		return buf.String(), nil
	}

	graphJSON, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := templateData{
		Title:     title,
		GraphJSON: template.JS(graphJSON),
		Layout:    layoutToCytoscape(opts.Layout),
		NodeCount: len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}

	var buf bytes.Buffer
	if err := compiledTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func validateLayout(layout string) error {
	switch layout {
	case "", "force", "circle", "grid":
		return nil
	default:
		return fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

type templateData struct {
	Title     string
	GraphJSON template.JS
	Layout    string
	NodeCount int
	EdgeCount int
}

// layoutToCytoscape converts user-facing layout names to Cytoscape.js layout names.
func layoutToCytoscape(layout string) string {
	switch layout {
	case "circle":
		return "circle"
	case "grid":
		return "grid"
	default:
		return "cose"
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    * { box-sizing: border-box; }
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      margin: 0;
      background: #f5f5f5;
    }
    #header {
      position: absolute;
      top: 8px;
      left: 12px;
      z-index: 10;
      font-size: 14px;
      color: #333;
    }
    #header .counts { color: #888; font-size: 12px; }
    #cy { width: 100%; height: 100vh; background: white; }
    #tooltip {
      position: absolute;
      display: none;
      background: white;
      border: 1px solid #ccc;
      border-radius: 4px;
      padding: 8px 12px;
      box-shadow: 0 2px 8px rgba(0,0,0,0.15);
      max-width: 340px;
      font-size: 13px;
      z-index: 1000;
      pointer-events: none;
    }
    #tooltip .label { font-weight: bold; margin-bottom: 4px; }
    #tooltip .detail { color: #555; margin: 2px 0; }
    #tooltip .tldr { font-style: italic; color: #666; margin-top: 4px; }
  </style>
</head>
<body>
  <div id="header">
    <div>{{.Title}}</div>
    <div class="counts">{{.NodeCount}} papers, {{.EdgeCount}} citations</div>
  </div>
  <div id="cy"></div>
  <div id="tooltip"></div>
  <script>
    (function() {
      const graphData = {{.GraphJSON}};
      const layout = "{{.Layout}}";

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: graphData,
        style: [
          {
            selector: 'node',
            style: {
              'background-color': '#4A90D9',
              'label': 'data(label)',
              'color': '#333',
              'font-size': '10px',
              'text-valign': 'bottom',
              'text-margin-y': '5px',
              'width': 'data(size)',
              'height': 'data(size)'
            }
          },
          {
            selector: 'node.seed',
            style: {
              'background-color': '#E8923A',
              'border-width': 3,
              'border-color': '#C0392B',
              'font-weight': 'bold'
            }
          },
          {
            selector: 'edge',
            style: {
              'line-color': '#95A5A6',
              'target-arrow-color': '#95A5A6',
              'target-arrow-shape': 'triangle',
              'curve-style': 'bezier',
              'width': 1.5
            }
          },
          { selector: 'node.highlighted', style: { 'border-width': 3, 'border-color': '#ff6b6b' } },
          { selector: 'node.dimmed', style: { 'opacity': 0.3 } },
          { selector: 'edge.dimmed', style: { 'opacity': 0.2 } }
        ],
        layout: {
          name: layout,
          animate: false,
          nodeRepulsion: 8000,
          idealEdgeLength: 100,
          edgeElasticity: 100
        }
      });

      const tooltip = document.getElementById('tooltip');

      function escapeHtml(str) {
        if (!str) return '';
        return String(str).replace(/&/g, '&amp;')
                          .replace(/</g, '&lt;')
                          .replace(/>/g, '&gt;')
                          .replace(/"/g, '&quot;');
      }

      function nodeTooltip(node) {
        const d = node.data();
        let html = '<div class="label">' + escapeHtml(d.title) + '</div>';
        if (d.authors) html += '<div class="detail">' + escapeHtml(d.authors) + '</div>';
        if (d.year) html += '<div class="detail">Year: ' + d.year + '</div>';
        html += '<div class="detail">Citations: ' + d.citations + '</div>';
        if (d.tldr) html += '<div class="tldr">' + escapeHtml(d.tldr) + '</div>';
        return html;
      }

      cy.on('mouseover', 'node', function(evt) {
        tooltip.innerHTML = nodeTooltip(evt.target);
        tooltip.style.display = 'block';
        const pos = evt.renderedPosition || evt.position;
        tooltip.style.left = (pos.x + 15) + 'px';
        tooltip.style.top = (pos.y + 15) + 'px';
      });

      cy.on('mouseout', 'node', function() {
        tooltip.style.display = 'none';
      });

      cy.on('tap', 'node', function(evt) {
        const node = evt.target;
        cy.elements().removeClass('highlighted dimmed');
        const neighborhood = node.neighborhood().add(node);
        neighborhood.addClass('highlighted');
        cy.elements().not(neighborhood).addClass('dimmed');
      });

      cy.on('dbltap', 'node', function(evt) {
        const url = evt.target.data('url');
        if (url) window.open(url, '_blank');
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) {
          cy.elements().removeClass('highlighted dimmed');
        }
      });
    })();
  </script>
</body>
</html>
{{define "empty"}}<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>{{.Title}} - Empty</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, Helvetica, Arial, sans-serif;
      display: flex;
      justify-content: center;
      align-items: center;
      height: 100vh;
      margin: 0;
      background: #f5f5f5;
    }
    .empty-state { text-align: center; color: #666; }
    .empty-state h2 { margin-bottom: 0.5em; color: #333; }
  </style>
</head>
<body>
  <div class="empty-state">
    <h2>No graph data</h2>
    <p>The seed paper was not found upstream, or it has no related papers.</p>
  </div>
</body>
</html>{{end}}`
