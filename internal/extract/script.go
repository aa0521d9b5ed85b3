package extract

// The tool scripts are written to a temp file per invocation and receive the
// deck path, output dir and published folder name as arguments. Each prints
// exactly one JSON result line on stdout.

const pptxScript = `
import copy
import json
import os
import sys

try:
    from pptx import Presentation

    pptx_path = sys.argv[1]
    output_dir = sys.argv[2]
    folder_name = sys.argv[3]

    src_prs = Presentation(pptx_path)
    slide_count = len(src_prs.slides)

    slides_content = []

    for idx, slide in enumerate(src_prs.slides, 1):
        text_content = []
        for shape in slide.shapes:
            if shape.has_text_frame:
                for paragraph in shape.text_frame.paragraphs:
                    for run in paragraph.runs:
                        if run.text.strip():
                            text_content.append(run.text.strip())
            if shape.has_table:
                for row in shape.table.rows:
                    for cell in row.cells:
                        if cell.text.strip():
                            text_content.append(cell.text.strip())

        slides_content.append({
            "slideNumber": idx,
            "content": ' '.join(text_content)
        })

        new_prs = Presentation()
        new_prs.slide_width = src_prs.slide_width
        new_prs.slide_height = src_prs.slide_height

        try:
            blank_layout = new_prs.slide_layouts[6]
        except Exception:
            blank_layout = new_prs.slide_layouts[0]

        new_slide = new_prs.slides.add_slide(blank_layout)

        for shape in slide.shapes:
            try:
                el = copy.deepcopy(shape.element)
                new_slide.shapes._spTree.insert_element_before(el, 'p:extLst')
            except Exception:
                pass

        new_prs.save(os.path.join(output_dir, 'slide_%03d.pptx' % idx))

    with open(os.path.join(output_dir, 'content.json'), 'w', encoding='utf-8') as f:
        json.dump({"slides": slides_content}, f, indent=2, ensure_ascii=False)

    metadata = {
        "name": os.path.splitext(os.path.basename(pptx_path))[0],
        "folder": folder_name,
        "slideCount": slide_count,
        "hasContent": True
    }
    with open(os.path.join(output_dir, 'metadata.json'), 'w') as f:
        json.dump(metadata, f, indent=2)

    print(json.dumps({"success": True, "slideCount": slide_count}))

except ImportError as e:
    print(json.dumps({"success": False, "error": "Missing Python package: %s. Install with: pip install python-pptx" % e}))
except Exception as e:
    print(json.dumps({"success": False, "error": str(e)}))
`

const comScript = `
import json
import os
import sys

try:
    import comtypes.client

    pptx_path = sys.argv[1]
    output_dir = sys.argv[2]
    folder_name = sys.argv[3]

    powerpoint = comtypes.client.CreateObject("PowerPoint.Application")
    powerpoint.Visible = 1

    presentation = powerpoint.Presentations.Open(os.path.abspath(pptx_path))
    slide_count = len(presentation.Slides)

    for i, slide in enumerate(presentation.Slides, 1):
        image_path = os.path.join(output_dir, 'slide_%03d.png' % i)
        slide.Export(os.path.abspath(image_path), "PNG", 1920, 1080)

    presentation.Close()
    powerpoint.Quit()

    metadata = {
        "name": os.path.splitext(os.path.basename(pptx_path))[0],
        "folder": folder_name,
        "slideCount": slide_count,
        "hasContent": False
    }
    with open(os.path.join(output_dir, 'metadata.json'), 'w') as f:
        json.dump(metadata, f, indent=2)

    print(json.dumps({"success": True, "slideCount": slide_count}))

except Exception as e:
    print(json.dumps({"success": False, "error": str(e)}))
`
