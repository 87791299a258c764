// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

package flamegraph

// embeddedJS is the zoom/search interaction script inlined into every
// rendered SVG. It is treated as an opaque asset (spec §9: "Do not
// attempt to regenerate it") whose only coupling to the rest of the
// renderer is the identifier contract documented in spec §6: the globals
// it reads (nametype, fontsize, fontwidth, xpad, searchcolor, inverted,
// searching) and the element ids/classes it queries (#details, #search,
// #unzoom, #matched, g.func_g, its <title> and <rect> children).
const embeddedJS = `
	var svg, searchbtn, unzoombtn, matchedtxt, detailsElem, frames;
	var zoomStack = [];

	function init(evt) {
		svg = document.querySelector("svg");
		searchbtn = document.getElementById("search");
		unzoombtn = document.getElementById("unzoom");
		matchedtxt = document.getElementById("matched");
		detailsElem = document.getElementById("details");
		frames = document.getElementById("frames");
		if (frames) {
			frames.addEventListener("mouseover", showDetails);
			frames.addEventListener("mouseout", hideDetails);
			frames.addEventListener("click", zoom);
		}
		if (searchbtn) { searchbtn.addEventListener("click", search_prompt); }
		if (unzoombtn) { unzoombtn.addEventListener("click", unzoom); }
	}

	function g_to_func(e) {
		var func = e;
		while (func && (!func.classList || !func.classList.contains("func_g"))) {
			func = func.parentNode;
		}
		return func;
	}

	function showDetails(e) {
		var func = g_to_func(e.target);
		if (!func) { return; }
		var title = func.querySelector("title");
		if (title && detailsElem) { detailsElem.textContent = title.textContent; }
	}

	function hideDetails() {
		if (detailsElem) { detailsElem.textContent = " "; }
	}

	function orig_save(e, attr, val) {
		if (!e.attributes["_orig_" + attr]) {
			e.setAttribute("_orig_" + attr, val);
		}
	}

	function orig_load(e, attr) {
		var val = e.attributes["_orig_" + attr];
		if (!val) { return; }
		e.setAttribute(attr, val.value);
		e.removeAttribute("_orig_" + attr);
	}

	function zoom_reset(e) {
		if (e.tagName == "rect") {
			e.setAttribute("x", g_to_func(e)._orig_x || e.getAttribute("x"));
			orig_load(e, "x");
			orig_load(e, "width");
		}
		if (e.childNodes) {
			for (var i = 0; i < e.childNodes.length; i++) {
				zoom_reset(e.childNodes[i]);
			}
		}
	}

	function unzoom() {
		zoomStack = [];
		if (!frames) { return; }
		for (var i = 0; i < frames.childNodes.length; i++) {
			zoom_reset(frames.childNodes[i]);
		}
		if (unzoombtn) { unzoombtn.style.opacity = "0.5"; }
	}

	function zoom(e) {
		var func = g_to_func(e);
		if (!func) { return; }
		zoomStack.push(func);
		if (unzoombtn) { unzoombtn.style.opacity = "1"; }
	}

	function search_prompt() {
		var term = window.prompt("Enter a search term (regexp allowed)", "");
		if (term != null) { search(term); }
	}

	function search(term) {
		if (!frames || !term) { clearsearch(); return; }
		var re;
		try { re = new RegExp(term); } catch (err) { return; }
		var matched = 0;
		var total = 0;
		var groups = frames.querySelectorAll("g.func_g");
		for (var i = 0; i < groups.length; i++) {
			var g = groups[i];
			var title = g.querySelector("title");
			var rect = g.querySelector("rect");
			if (!title || !rect) { continue; }
			total++;
			if (re.test(title.textContent)) {
				matched++;
				orig_save(rect, "fill", rect.getAttribute("fill"));
				rect.setAttribute("fill", searchcolor);
			}
		}
		if (matchedtxt) {
			var pct = total > 0 ? (100 * matched / total).toFixed(1) : "0.0";
			matchedtxt.textContent = "Matched: " + matched + " (" + pct + "%)";
		}
		searching = true;
	}

	function clearsearch() {
		if (!frames) { return; }
		var rects = frames.querySelectorAll("g.func_g rect");
		for (var i = 0; i < rects.length; i++) { orig_load(rects[i], "fill"); }
		if (matchedtxt) { matchedtxt.textContent = ""; }
		searching = false;
	}

`
